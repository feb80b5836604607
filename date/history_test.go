package date

import "testing"

func TestAppend(t *testing.T) {
	h := new(History[string])
	d1, v1 := New(2025, 07, 01), "25 Jul 1"
	d2, v2 := New(2024, 07, 01), "24 Jul 1"

	// Test is about appending two values in reverse order and checking that everything is
	// as expected at every step of the way.

	if h.Len() != 0 {
		t.Errorf("History.Len() = %v want 0", h.Len())
	}

	h.Append(d1, v1)
	if h.Len() != 1 {
		t.Errorf("Append(d1, v1).Len() = %v want 1", h.Len())
	}

	h.Append(d2, v2)
	if h.Len() != 2 {
		t.Errorf("Append(d2, v2).Len() = %v want 2", h.Len())
	}

	if h.days[1] != d1 {
		t.Errorf("history[1].day = %v want %v", h.days[0], d1)
	}
	if h.days[0] != d2 {
		t.Errorf("history[0].day = %v want %v", h.days[1], d2)
	}
	if h.values[1] != v1 {
		t.Errorf("history[1].value = %v want %v", h.values[0], v1)
	}
	if h.values[0] != v2 {
		t.Errorf("history[0].value = %v want %v", h.values[1], v2)
	}

}

func TestAppendOverwrites(t *testing.T) {
	h := new(History[string])
	d := New(2025, 7, 1)
	h.Append(d, "first")
	h.Append(d, "second")

	if h.Len() != 1 {
		t.Fatalf("History.Len() = %v want 1", h.Len())
	}
	if v, ok := h.Get(d); !ok || v != "second" {
		t.Errorf("Get(%v) = %q, %v want %q, true", d, v, ok, "second")
	}
}

func TestValueAsOf(t *testing.T) {
	h := new(History[string])
	h.Append(New(2023, 1, 2), "mon")
	h.Append(New(2023, 1, 3), "tue")
	h.Append(New(2023, 1, 6), "fri")

	tests := []struct {
		day  Date
		want string
		ok   bool
	}{
		{day: New(2023, 1, 2), want: "mon", ok: true},  // exact match
		{day: New(2023, 1, 5), want: "tue", ok: true},  // carry back to the previous point
		{day: New(2023, 1, 8), want: "fri", ok: true},  // after the last point
		{day: New(2023, 1, 1), ok: false},              // before the earliest point
	}
	for _, tt := range tests {
		got, ok := h.ValueAsOf(tt.day)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ValueAsOf(%v) = %q, %v want %q, %v", tt.day, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLatestEarliest(t *testing.T) {
	h := new(History[int])
	if d, v := h.Latest(); d != (Date{}) || v != 0 {
		t.Errorf("empty Latest() = %v, %v want zero values", d, v)
	}

	h.Append(New(2023, 5, 1), 5)
	h.Append(New(2023, 1, 1), 1)

	if d, v := h.Earliest(); d != New(2023, 1, 1) || v != 1 {
		t.Errorf("Earliest() = %v, %v", d, v)
	}
	if d, v := h.Latest(); d != New(2023, 5, 1) || v != 5 {
		t.Errorf("Latest() = %v, %v", d, v)
	}
}
