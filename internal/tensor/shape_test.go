package tensor

import (
	"testing"
)

func TestShape_NumElements(t *testing.T) {
	tests := []struct {
		shape Shape
		want  int
	}{
		{Shape{2, 3, 4}, 24},
		{Shape{1}, 1},
		{Shape{5}, 5},
		{Shape{}, 1},
	}
	for _, tt := range tests {
		if got := tt.shape.NumElements(); got != tt.want {
			t.Errorf("Shape%v.NumElements() = %d, want %d", tt.shape, got, tt.want)
		}
	}
}

func TestShape_Validate(t *testing.T) {
	if err := (Shape{2, 3}).Validate(); err != nil {
		t.Errorf("Shape{2,3}.Validate() = %v, want nil", err)
	}
	if err := (Shape{2, 0}).Validate(); err == nil {
		t.Error("Shape{2,0}.Validate() = nil, want error")
	}
	if err := (Shape{-1, 3}).Validate(); err == nil {
		t.Error("Shape{-1,3}.Validate() = nil, want error")
	}
}

func TestShape_Equal(t *testing.T) {
	if !(Shape{2, 3}).Equal(Shape{2, 3}) {
		t.Error("Shape{2,3} should equal Shape{2,3}")
	}
	if (Shape{2, 3}).Equal(Shape{3, 2}) {
		t.Error("Shape{2,3} should not equal Shape{3,2}")
	}
	if (Shape{2, 3}).Equal(Shape{2, 3, 1}) {
		t.Error("shapes of different rank should not be equal")
	}
}

func TestShape_ComputeStrides(t *testing.T) {
	strides := Shape{2, 3, 4}.ComputeStrides()
	want := []int{12, 4, 1}
	for i := range want {
		if strides[i] != want[i] {
			t.Errorf("ComputeStrides() = %v, want %v", strides, want)
			break
		}
	}
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Shape
		want    Shape
		needs   bool
		wantErr bool
	}{
		{"equal", Shape{2, 3}, Shape{2, 3}, Shape{2, 3}, false, false},
		{"scalar dim", Shape{2, 3}, Shape{1, 3}, Shape{2, 3}, true, false},
		{"rank extend", Shape{4, 3, 2}, Shape{3, 2}, Shape{4, 3, 2}, true, false},
		{"mask bias", Shape{8, 8, 4, 2}, Shape{8, 1, 1, 2}, Shape{8, 8, 4, 2}, true, false},
		{"bias column", Shape{16, 6}, Shape{16, 1}, Shape{16, 6}, true, false},
		{"mismatch", Shape{2, 3}, Shape{2, 4}, nil, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, needs, err := BroadcastShapes(tt.a, tt.b)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("BroadcastShapes(%v, %v) = %v, want error", tt.a, tt.b, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("BroadcastShapes(%v, %v) error: %v", tt.a, tt.b, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("BroadcastShapes(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if needs != tt.needs {
				t.Errorf("BroadcastShapes(%v, %v) needsBroadcast = %v, want %v", tt.a, tt.b, needs, tt.needs)
			}
		})
	}
}

func TestRawTensor_WithShape(t *testing.T) {
	raw := MustNewRaw(Shape{2, 6}, Float32, CPU)
	view := raw.WithShape(Shape{3, 4})
	if !view.Shape().Equal(Shape{3, 4}) {
		t.Errorf("WithShape shape = %v, want [3 4]", view.Shape())
	}

	defer func() {
		if recover() == nil {
			t.Error("WithShape with mismatched element count should panic")
		}
	}()
	raw.WithShape(Shape{5, 5})
}
