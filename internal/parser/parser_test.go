package parser

import (
	"testing"
	"time"
)

func TestParseBegin(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantTraj   string
		wantJoints []string
		wantErr    bool
	}{
		{
			name:       "with joint names",
			args:       []string{"pick_place", "shoulder;elbow;wrist"},
			wantTraj:   "pick_place",
			wantJoints: []string{"shoulder", "elbow", "wrist"},
		},
		{
			name:     "without joint names",
			args:     []string{"pick_place"},
			wantTraj: "pick_place",
		},
		{
			name:     "empty joint names argument",
			args:     []string{"pick_place", ""},
			wantTraj: "pick_place",
		},
		{
			name:    "missing trajectory name",
			args:    []string{},
			wantErr: true,
		},
		{
			name:    "empty trajectory name",
			args:    []string{""},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			traj, names, err := ParseBegin(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if traj != tt.wantTraj {
				t.Errorf("trajectory = %q, want %q", traj, tt.wantTraj)
			}
			if len(names) != len(tt.wantJoints) {
				t.Fatalf("joint names = %v, want %v", names, tt.wantJoints)
			}
			for i := range names {
				if names[i] != tt.wantJoints[i] {
					t.Errorf("joint name [%d] = %q, want %q", i, names[i], tt.wantJoints[i])
				}
			}
		})
	}
}

func TestParseSample(t *testing.T) {
	traj, dt, states, err := ParseSample([]string{
		"pick_place",
		"100000000",
		"0.5:0.1:2.0:0.01|1.25",
	})
	if err != nil {
		t.Fatalf("ParseSample: %v", err)
	}
	if traj != "pick_place" {
		t.Errorf("trajectory = %q", traj)
	}
	if dt != 100*time.Millisecond {
		t.Errorf("dt = %v, want 100ms", dt)
	}
	if len(states) != 2 {
		t.Fatalf("expected 2 joint states, got %d", len(states))
	}
	if states[0].Position != 0.5 || states[0].Speed != 0.1 || states[0].Effort != 2.0 || states[0].Acceleration != 0.01 {
		t.Errorf("state[0] = %+v", states[0])
	}
	if states[0].Raw != 0 {
		t.Errorf("state[0].Raw = %v, want 0 when the field is omitted", states[0].Raw)
	}
	if states[1].Position != 1.25 || states[1].Speed != 0 {
		t.Errorf("state[1] = %+v", states[1])
	}
}

func TestParseSample_RawField(t *testing.T) {
	_, _, states, err := ParseSample([]string{
		"pick_place",
		"100000000",
		"0.5:0.1:2.0:0.01:2048",
	})
	if err != nil {
		t.Fatalf("ParseSample: %v", err)
	}
	if len(states) != 1 {
		t.Fatalf("expected 1 joint state, got %d", len(states))
	}
	if states[0].Raw != 2048 {
		t.Errorf("Raw = %v, want 2048", states[0].Raw)
	}
	if states[0].Position != 0.5 {
		t.Errorf("Position = %v, want 0.5", states[0].Position)
	}
}

func TestParseSample_Malformed(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"too few arguments", []string{"pick_place", "100"}},
		{"empty trajectory name", []string{"", "100", "0.5"}},
		{"bad time", []string{"pick_place", "soon", "0.5"}},
		{"negative time", []string{"pick_place", "-5", "0.5"}},
		{"bad float", []string{"pick_place", "100", "0.5|oops"}},
		{"too many state fields", []string{"pick_place", "100", "1:2:3:4:5:6"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, _, err := ParseSample(tt.args); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseEnd(t *testing.T) {
	traj, err := ParseEnd([]string{"pick_place"})
	if err != nil {
		t.Fatalf("ParseEnd: %v", err)
	}
	if traj != "pick_place" {
		t.Errorf("trajectory = %q", traj)
	}

	if _, err := ParseEnd(nil); err == nil {
		t.Error("expected error for missing name")
	}
}
