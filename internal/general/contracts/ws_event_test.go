package contracts

import (
	"encoding/json"
	"testing"
)

func TestDriverLocationEventAcceptsNumbersAndStrings(t *testing.T) {
	cases := []string{
		`{"event":"driver_location","latitude":40.7128,"longitude":-74.006}`,
		`{"event":"driver_location","latitude":"40.7128","longitude":"-74.006"}`,
		`{"event":"driver_location","latitude":"40.7128","longitude":-74.006}`,
	}
	for _, raw := range cases {
		var ev DriverLocationEvent
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			t.Fatalf("%s: %v", raw, err)
		}
		if ev.Latitude == nil || float64(*ev.Latitude) != 40.7128 {
			t.Fatalf("%s: latitude = %v", raw, ev.Latitude)
		}
		if ev.Longitude == nil || float64(*ev.Longitude) != -74.006 {
			t.Fatalf("%s: longitude = %v", raw, ev.Longitude)
		}
	}
}

func TestDriverLocationEventRejectsGarbage(t *testing.T) {
	var ev DriverLocationEvent
	if err := json.Unmarshal([]byte(`{"latitude":"north","longitude":1}`), &ev); err == nil {
		t.Fatal("non-numeric latitude accepted")
	}
}

func TestDriverLocationEventMissingFields(t *testing.T) {
	var ev DriverLocationEvent
	if err := json.Unmarshal([]byte(`{"event":"driver_location"}`), &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.Latitude != nil || ev.Longitude != nil {
		t.Fatalf("missing fields decoded as %v/%v", ev.Latitude, ev.Longitude)
	}
}

func TestEventEnvelopeTag(t *testing.T) {
	var env EventEnvelope
	if err := json.Unmarshal([]byte(`{"event":"subscribe_ride","ride_id":"RIDE-X"}`), &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.Event != EventSubscribeRide {
		t.Fatalf("event = %q", env.Event)
	}
}
