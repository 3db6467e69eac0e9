package services

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDay_JSON(t *testing.T) {
	var in struct {
		A Day  `json:"a"`
		B Day  `json:"b"`
		C *Day `json:"c"`
	}
	err := json.Unmarshal([]byte(`{"a":"2024-06-01","b":"2024-06-01T10:30:00+03:00","c":null}`), &in)
	if err != nil {
		t.Fatal(err)
	}
	if !in.A.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("a = %v", in.A)
	}
	if !in.B.Equal(time.Date(2024, 6, 1, 7, 30, 0, 0, time.UTC)) {
		t.Fatalf("b = %v", in.B)
	}
	if in.C != nil || dayPtr(in.C) != nil {
		t.Fatalf("c = %v", in.C)
	}
	if err := json.Unmarshal([]byte(`{"a":"01/06/2024"}`), &in); err == nil {
		t.Fatal("want error for unknown layout")
	}
	out, _ := json.Marshal(DayOf(in.A.Time))
	if string(out) != `"2024-06-01"` {
		t.Fatalf("marshal = %s", out)
	}
}
