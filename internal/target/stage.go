package target

// Stage is a pipeline stage, ordered the way data flows through the
// graphics pipeline.
type Stage uint8

const (
	StageVertex Stage = iota
	StageHull
	StageDomain
	StageGeometry
	StagePixel
	StageCompute
)

var stageInfo = [...]struct{ name, entry string }{
	StageVertex:   {"vertex", "VSMain"},
	StageHull:     {"hull", "HSMain"},
	StageDomain:   {"domain", "DSMain"},
	StageGeometry: {"geometry", "GSMain"},
	StagePixel:    {"pixel", "PSMain"},
	StageCompute:  {"compute", "CSMain"},
}

func (s Stage) String() string { return stageInfo[s].name }

// EntryName is the method name that makes a method the stage entry point.
func (s Stage) EntryName() string { return stageInfo[s].entry }

// Stages lists all stages in pipeline order.
func Stages() []Stage {
	return []Stage{StageVertex, StageHull, StageDomain, StageGeometry, StagePixel, StageCompute}
}

// StageByEntry maps VSMain and friends to their stage.
func StageByEntry(name string) (Stage, bool) {
	for _, s := range Stages() {
		if stageInfo[s].entry == name {
			return s, true
		}
	}
	return 0, false
}

// Graphics reports stages that take part in the rasterization pipeline.
func (s Stage) Graphics() bool { return s != StageCompute }

// Before reports whether s runs upstream of other in the graphics pipeline.
func (s Stage) Before(other Stage) bool {
	return s.Graphics() && other.Graphics() && s < other
}
