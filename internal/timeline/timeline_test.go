package timeline

import (
	"math"
	"slices"
	"testing"

	"overlaytv/internal/models"
	"overlaytv/internal/store"
)

func TestPercentAndTimeAt(t *testing.T) {
	p := Projector{Duration: 100, Width: 500}
	tests := []struct {
		x, wantT float64
	}{
		{0, 0},
		{250, 50},
		{500, 100},
		{-20, 0},
		{900, 100},
	}
	for _, tt := range tests {
		if got := p.TimeAt(tt.x); got != tt.wantT {
			t.Errorf("TimeAt(%v) = %v, want %v", tt.x, got, tt.wantT)
		}
	}
	if got := p.Percent(25); got != 25 {
		t.Errorf("Percent(25) = %v", got)
	}
	if got := p.Percent(150); got != 100 {
		t.Errorf("Percent(150) = %v, want clamped 100", got)
	}
	if got := (Projector{}).Percent(5); got != 0 {
		t.Errorf("Percent with unknown duration = %v", got)
	}
}

func TestTicks(t *testing.T) {
	got := Projector{Duration: 125, Width: 1}.Ticks()
	want := []string{"0:00", "0:12", "0:25", "0:37", "0:50", "1:02", "1:15", "1:27", "1:40", "1:52", "2:05"}
	if !slices.Equal(got, want) {
		t.Errorf("Ticks = %v, want %v", got, want)
	}
}

func TestFormatTime(t *testing.T) {
	tests := map[float64]string{
		0:          "0:00",
		9.9:        "0:09",
		61:         "1:01",
		3599:       "59:59",
		-4:         "0:00",
		math.NaN(): "0:00",
	}
	for in, want := range tests {
		if got := FormatTime(in); got != want {
			t.Errorf("FormatTime(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestBars(t *testing.T) {
	p := Projector{Duration: 20, Width: 400}
	bars := p.Bars([]models.Annotation{
		{ID: "a", StartTime: 2, EndTime: 7, Type: models.KindDrawing},
		{ID: "b", StartTime: 10, EndTime: 20, Type: models.KindText},
	}, "b")
	if bars[0].Left != 10 || bars[0].Width != 25 || bars[0].Selected {
		t.Errorf("bar a = %+v", bars[0])
	}
	if bars[1].Left != 50 || bars[1].Width != 50 || !bars[1].Selected {
		t.Errorf("bar b = %+v", bars[1])
	}
}

func TestStartHandleRespectsMinGap(t *testing.T) {
	st := store.New()
	a := st.Add(models.ToolDraw, models.DrawingData{}, 2, 64)
	st.Update(a.ID, models.Patch{EndTime: models.Ptr(10.0)})
	a, _ = st.Get(a.ID)

	p := Projector{Duration: 64, Width: 640}
	d := p.BeginDrag(a, HandleStart, 20)

	if patch, ok := d.Move(98); ok {
		st.Update(a.ID, patch)
		t.Error("start drag to 9.8 was accepted")
	}
	got, _ := st.Get(a.ID)
	if got.StartTime != 2 {
		t.Errorf("StartTime = %v, want 2", got.StartTime)
	}

	if _, ok := d.Move(95); ok {
		t.Error("start drag to exactly the minimum gap accepted")
	}

	patch, ok := d.Move(40)
	if !ok || !st.Update(a.ID, patch) {
		t.Fatal("start drag to 4 rejected")
	}
	got, _ = st.Get(a.ID)
	if got.StartTime != 4 || got.EndTime != 10 {
		t.Errorf("range = [%v, %v], want [4, 10]", got.StartTime, got.EndTime)
	}
}

func TestEndHandleRespectsMinGap(t *testing.T) {
	a := models.Annotation{ID: "a", StartTime: 2, EndTime: 10}
	d := Projector{Duration: 64, Width: 640}.BeginDrag(a, HandleEnd, 100)

	if _, ok := d.Move(22); ok {
		t.Error("end drag to 2.2 accepted")
	}
	if _, ok := d.Move(25); ok {
		t.Error("end drag to exactly the minimum gap accepted")
	}
	patch, ok := d.Move(30)
	if !ok || *patch.EndTime != 3 {
		t.Errorf("end drag to 3 = %+v, %v", patch, ok)
	}
	if patch.StartTime != nil {
		t.Error("end drag touched start")
	}
}

func TestMoveHandlePreservesLengthAndClamps(t *testing.T) {
	a := models.Annotation{ID: "a", StartTime: 10, EndTime: 15}
	p := Projector{Duration: 64, Width: 640}
	d := p.BeginDrag(a, HandleMove, 120)

	tests := []struct {
		x                  float64
		wantStart, wantEnd float64
	}{
		{220, 20, 25},
		{0, 0, 5},
		{640, 59, 64},
		{120, 10, 15},
	}
	for _, tt := range tests {
		patch, ok := d.Move(tt.x)
		if !ok {
			t.Fatalf("Move(%v) rejected", tt.x)
		}
		if *patch.StartTime != tt.wantStart || *patch.EndTime != tt.wantEnd {
			t.Errorf("Move(%v) = [%v, %v], want [%v, %v]", tt.x, *patch.StartTime, *patch.EndTime, tt.wantStart, tt.wantEnd)
		}
	}
}

func TestMoveHandlePinsRightEdge(t *testing.T) {
	// 93.7 and 11.7 have no exact binary form; start+length rounds past
	// the duration unless the edge is pinned.
	tests := []struct {
		duration, start, end float64
	}{
		{93.7, 1.3, 11.7},
		{60.1, 0.7, 5.7},
		{33.3, 3.1, 13.3},
		{0.9, 0.1, 0.7},
	}
	for _, tt := range tests {
		st := store.New()
		st.SetDuration(tt.duration)
		a := st.Add(models.ToolDraw, models.DrawingData{}, 0, tt.duration)
		if !st.Update(a.ID, models.Patch{StartTime: models.Ptr(tt.start), EndTime: models.Ptr(tt.end)}) {
			t.Fatalf("setup retime [%v, %v] rejected", tt.start, tt.end)
		}
		a, _ = st.Get(a.ID)

		d := Projector{Duration: tt.duration, Width: 1000}.BeginDrag(a, HandleMove, 0)
		patch, ok := d.Move(1000)
		if !ok || !st.Update(a.ID, patch) {
			t.Errorf("duration %v: move to the end rejected", tt.duration)
			continue
		}
		got, _ := st.Get(a.ID)
		if got.EndTime != tt.duration {
			t.Errorf("duration %v: end = %v", tt.duration, got.EndTime)
		}
		if length := got.EndTime - got.StartTime; math.Abs(length-(tt.end-tt.start)) > 1e-9 {
			t.Errorf("duration %v: length = %v, want %v", tt.duration, length, tt.end-tt.start)
		}
	}
}

func TestNumericEdits(t *testing.T) {
	a := models.Annotation{StartTime: 2, EndTime: 10}

	if p, ok := SetStart(a, -3); !ok || *p.StartTime != 0 {
		t.Errorf("SetStart(-3) = %+v, %v", p, ok)
	}
	if _, ok := SetStart(a, 9.8); ok {
		t.Error("SetStart(9.8) accepted")
	}
	if p, ok := SetEnd(a, 90, 60); !ok || *p.EndTime != 60 {
		t.Errorf("SetEnd(90) = %+v, %v", p, ok)
	}
	if _, ok := SetEnd(a, 2.3, 60); ok {
		t.Error("SetEnd(2.3) accepted")
	}
	if _, ok := SetEnd(a, 2.5, 60); ok {
		t.Error("SetEnd(2.5) accepted with only the minimum gap")
	}
	if _, ok := SetStart(a, 9.5); ok {
		t.Error("SetStart(9.5) accepted with only the minimum gap")
	}
	if _, ok := SetStart(a, math.Inf(1)); ok {
		t.Error("SetStart(+Inf) accepted")
	}
}

func TestCountLabel(t *testing.T) {
	for n, want := range map[int]string{0: "0 overlays", 1: "1 overlay", 7: "7 overlays"} {
		if got := CountLabel(n); got != want {
			t.Errorf("CountLabel(%d) = %q", n, got)
		}
	}
}
