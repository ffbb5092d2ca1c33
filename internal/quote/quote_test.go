package quote

import (
	"encoding/json"
	"errors"
	"testing"
)

func validRequest() Request {
	return Request{
		Origin:      "PVG",
		Destination: "LAX",
		Weight:      100,
		Volume:      0.5,
		CargoType:   CargoGeneral,
		Email:       "a@b.com",
	}
}

func TestRequestValidate(t *testing.T) {
	if err := validRequest().Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	r := validRequest()
	r.Email = ""
	if err := r.Validate(); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("want ErrMissingFields, got %v", err)
	}

	r = validRequest()
	r.Origin = "PV"
	if err := r.Validate(); !errors.Is(err, ErrInvalidIATA) {
		t.Fatalf("want ErrInvalidIATA, got %v", err)
	}

	r = validRequest()
	r.Weight = -5
	if err := r.Validate(); !errors.Is(err, ErrNonPositive) {
		t.Fatalf("want ErrNonPositive, got %v", err)
	}
}

func TestTransitRange_JSON(t *testing.T) {
	b, err := json.Marshal(TransitRange{MinDays: 2, MaxDays: 3})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2-3 days"` {
		t.Fatalf("unexpected wire form: %s", b)
	}

	var tr TransitRange
	if err := json.Unmarshal([]byte(`"1-2 days"`), &tr); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if tr.MinDays != 1 || tr.MaxDays != 2 {
		t.Fatalf("unexpected range: %+v", tr)
	}

	if err := json.Unmarshal([]byte(`"soonish"`), &tr); err == nil {
		t.Fatal("expected error for malformed range")
	}
}
