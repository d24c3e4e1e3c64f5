package luavolume

import "testing"

func TestSampleEvaluatesScript(t *testing.T) {
	v, err := New(`
function sample(x, y, z)
  return x + y + z
end
`)
	if err != nil {
		t.Fatal(err)
	}
	defer v.Close()
	if got := v.Sample(1, 2, 3); got != 6 {
		t.Errorf("Sample(1,2,3) = %v, want 6", got)
	}
}

func TestNewRejectsMissingSampleFunction(t *testing.T) {
	_, err := New(`x = 1`)
	if err == nil {
		t.Fatal("expected error for script without sample()")
	}
}

func TestNewRejectsSyntaxError(t *testing.T) {
	_, err := New(`function sample(x, y, z`)
	if err == nil {
		t.Fatal("expected error for malformed script")
	}
}
