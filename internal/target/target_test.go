package target

import "testing"

func TestParseProfile(t *testing.T) {
	cases := map[string]Profile{"": SM5_0, "sm4_0": SM4_0, "5_1": SM5_1, "6.0": SM6_0, "SM6_2": SM6_2}
	for in, want := range cases {
		got, err := ParseProfile(in)
		if err != nil || got != want {
			t.Errorf("%q: got %v, %v", in, got, err)
		}
	}
	if _, err := ParseProfile("sm7_0"); err == nil {
		t.Fatal("sm7_0 accepted")
	}
}

func TestFeaturesFollowProfileOrder(t *testing.T) {
	if SM5_0.Supports(FeatureWave) || !SM6_0.Supports(FeatureWave) {
		t.Fatal("wave gating")
	}
	if SM6_0.Supports(FeatureHalf) || !SM6_2.Supports(FeatureHalf) {
		t.Fatal("half gating")
	}
	if SM5_1.SPIRVVersion() != 0x00010000 || SM6_0.SPIRVVersion() != 0x00010300 {
		t.Fatal("spirv version")
	}
}

func TestStages(t *testing.T) {
	s, ok := StageByEntry("PSMain")
	if !ok || s != StagePixel || s.EntryName() != "PSMain" {
		t.Fatalf("PSMain: %v %v", s, ok)
	}
	if !StageVertex.Before(StagePixel) || StagePixel.Before(StageVertex) || StageVertex.Before(StageCompute) {
		t.Fatal("Before")
	}
	if _, ok := StageByEntry("main"); ok {
		t.Fatal("main is not an entry")
	}
}
