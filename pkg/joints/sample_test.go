package joints

import (
	"testing"
	"time"
)

func TestJoints_Resize(t *testing.T) {
	var j Joints
	j.Resize(2)

	if j.Size() != 2 || len(j.Names) != 2 {
		t.Fatalf("Size() = %d, len(Names) = %d, want 2 and 2", j.Size(), len(j.Names))
	}

	j.Names[1] = "elbow"
	j.Elements[1] = JointState{Position: 0.7}
	j.Time = time.Unix(100, 0)

	got, ok := j.ElementByName("elbow")
	if !ok || got.Position != 0.7 {
		t.Errorf("ElementByName(elbow) = %+v, %v, want position 0.7, true", got, ok)
	}
}
