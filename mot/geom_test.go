package mot

import (
	"image"
	"math"
	"testing"
)

const (
	eps = 0.00001
)

func TestEuclideanDistance(t *testing.T) {
	p1 := Point{X: 341, Y: 264}
	p2 := Point{X: 421, Y: 427}
	correctAnswer := 181.57367
	answer := p1.DistanceTo(p2)
	if math.Abs(answer-correctAnswer) > eps {
		t.Errorf("Wrong answer: %v, correct answer: %v", answer, correctAnswer)
	}
}

func TestFootPoint(t *testing.T) {
	rect := NewRectFromCorners(101, 50, 130, 121.7)
	foot := rect.FootPoint()
	if foot.X != 115 || foot.Y != 121 {
		t.Errorf("Expected foot point (115, 121), got %v", foot)
	}
}

func TestRectangleClamp(t *testing.T) {
	cases := []struct {
		name   string
		rect   Rectangle
		ok     bool
		expect Rectangle
	}{
		{"inside", NewRectFromCorners(10, 10, 20, 30), true, NewRectFromCorners(10, 10, 20, 30)},
		{"partially outside", NewRectFromCorners(-5, 90, 20, 150), true, NewRectFromCorners(0, 90, 20, 99)},
		{"fully outside", NewRectFromCorners(200, 200, 220, 230), false, Rectangle{}},
		{"degenerate", NewRectFromCorners(10, 10, 10, 30), false, Rectangle{}},
	}
	for _, tc := range cases {
		got, ok := tc.rect.Clamp(100, 100)
		if ok != tc.ok {
			t.Errorf("[%s] expected ok=%v, got %v", tc.name, tc.ok, ok)
			continue
		}
		if got != tc.expect {
			t.Errorf("[%s] expected %v, got %v", tc.name, tc.expect, got)
		}
	}
}

func TestRectangleImage(t *testing.T) {
	rect := NewRectFrom(image.Rect(3, 4, 13, 24))
	if rect.Width != 10 || rect.Height != 20 {
		t.Errorf("Expected 10x20, got %vx%v", rect.Width, rect.Height)
	}
	if rect.Image() != image.Rect(3, 4, 13, 24) {
		t.Errorf("Round trip failed: %v", rect.Image())
	}
}

func TestIoU(t *testing.T) {
	a := NewRect(0, 0, 10, 10)
	b := NewRect(5, 5, 10, 10)
	// intersection 25, union 175
	if math.Abs(IoU(a, b)-25.0/175.0) > eps {
		t.Errorf("Wrong IoU: %v", IoU(a, b))
	}
	if IoU(a, NewRect(20, 20, 5, 5)) != 0 {
		t.Error("Disjoint rectangles should have zero IoU")
	}
	if IoU(a, NewRect(0, 0, 0, 10)) != 0 {
		t.Error("Empty rectangle should have zero IoU")
	}
	if math.Abs(IoU(a, a)-1.0) > eps {
		t.Error("Rectangle should fully overlap itself")
	}
}
