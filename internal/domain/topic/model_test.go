package topic

import (
	"errors"
	"fmt"
	"math"
	"testing"
)

func TestParseCategory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Category
		wantErr bool
	}{
		{in: "entity", want: CategoryEntity},
		{in: " Action ", want: CategoryAction},
		{in: "ATTRIBUTE", want: CategoryAttribute},
		{in: "other", want: CategoryOther},
		{in: "person", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseCategory(tt.in)
			if tt.wantErr {
				if !IsValidation(err) {
					t.Fatalf("ParseCategory(%q) error = %v, want validation error", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCategory(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("ParseCategory(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestClamp01(t *testing.T) {
	t.Parallel()

	cases := map[float64]float64{
		-0.5:       0,
		0:          0,
		0.425:      0.425,
		1:          1,
		3.2:        1,
		math.NaN(): 0,
	}
	for in, want := range cases {
		if got := Clamp01(in); got != want {
			t.Errorf("Clamp01(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestContentTexts(t *testing.T) {
	t.Parallel()

	c := Content{
		SocialMedia:   []Post{{Text: "This is a test post"}, {Text: ""}, {Text: "Another test post"}},
		SearchQueries: []string{"test query 1", "", "test query 2"},
	}
	got := c.Texts()
	want := []string{"This is a test post", "Another test post", "test query 1", "test query 2"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("Texts() = %q, want %q", got, want)
	}
}

func TestFeaturesVectorOrder(t *testing.T) {
	t.Parallel()

	f := Features{SearchVolume: 1, Competition: 2, TrendScore: 3, HITLScore: 4}
	if got := f.Vector(); got != [4]float64{1, 2, 3, 4} {
		t.Fatalf("Vector() = %v", got)
	}
}

func TestUpstreamWrapsAndUnwraps(t *testing.T) {
	t.Parallel()

	if Upstream("store", nil) != nil {
		t.Fatal("Upstream(nil) should be nil")
	}

	base := errors.New("connection refused")
	err := fmt.Errorf("prioritize: %w", Upstream("signal store", base))
	if !IsDependency(err) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped base error")
	}
	if IsValidation(err) {
		t.Fatalf("dependency error must not be a validation error")
	}
}
