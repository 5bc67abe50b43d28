package model

// CriteriaType groups related rating criteria into a family. Each entity is
// rated under exactly one family; the two ranking indexes are maintained
// per family.
type CriteriaType uint8

// Known criteria families.
const (
	CriteriaTypeGeneral CriteriaType = iota
	CriteriaTypeSupport

	criteriaTypeCount // sentinel, keep last
)

// String returns the wire name of the criteria type.
func (t CriteriaType) String() string {
	switch t {
	case CriteriaTypeGeneral:
		return "general"
	case CriteriaTypeSupport:
		return "support"
	default:
		return "unknown"
	}
}

// ParseCriteriaType maps a wire name back to a criteria type.
func ParseCriteriaType(s string) (CriteriaType, bool) {
	switch s {
	case "general":
		return CriteriaTypeGeneral, true
	case "support":
		return CriteriaTypeSupport, true
	default:
		return 0, false
	}
}

// CriteriaTypes returns all known families in declaration order.
func CriteriaTypes() []CriteriaType {
	out := make([]CriteriaType, 0, criteriaTypeCount)
	for t := CriteriaType(0); t < criteriaTypeCount; t++ {
		out = append(out, t)
	}
	return out
}

// Criterion identifies a single rating dimension within a family.
type Criterion uint8

// Known criteria across all families.
const (
	CriterionQuality Criterion = iota
	CriterionValue
	CriterionReliability
	CriterionResponsiveness
	CriterionKnowledge
)

// CriterionSpec describes one criterion: its family, submission-scale
// bounds, and the minimum average that is published without suppression.
// The table replaces compile-time enum dispatch; all per-criterion
// behavior is driven by it.
type CriterionSpec struct {
	ID              Criterion
	Type            CriteriaType
	Name            string
	ScaleMin        int
	ScaleMax        int
	VisibilityFloor int // averages below this are suppressed unless asked for
}

// ScaleSize returns the number of distinct submission-scale values.
func (s CriterionSpec) ScaleSize() int {
	return s.ScaleMax - s.ScaleMin + 1
}

var criteriaTable = []CriterionSpec{
	{ID: CriterionQuality, Type: CriteriaTypeGeneral, Name: "quality", ScaleMin: 1, ScaleMax: 5, VisibilityFloor: 3},
	{ID: CriterionValue, Type: CriteriaTypeGeneral, Name: "value", ScaleMin: 1, ScaleMax: 5, VisibilityFloor: 3},
	{ID: CriterionReliability, Type: CriteriaTypeGeneral, Name: "reliability", ScaleMin: 1, ScaleMax: 5, VisibilityFloor: 3},
	{ID: CriterionResponsiveness, Type: CriteriaTypeSupport, Name: "responsiveness", ScaleMin: 1, ScaleMax: 5, VisibilityFloor: 3},
	{ID: CriterionKnowledge, Type: CriteriaTypeSupport, Name: "knowledge", ScaleMin: 1, ScaleMax: 5, VisibilityFloor: 3},
}

// Criteria returns the full criterion table.
func Criteria() []CriterionSpec {
	return criteriaTable
}

// CriteriaFor returns the criteria belonging to one family, in table order.
func CriteriaFor(t CriteriaType) []CriterionSpec {
	out := make([]CriterionSpec, 0, len(criteriaTable))
	for _, spec := range criteriaTable {
		if spec.Type == t {
			out = append(out, spec)
		}
	}
	return out
}

// SpecOf looks up the spec for a criterion.
func SpecOf(c Criterion) (CriterionSpec, bool) {
	for _, spec := range criteriaTable {
		if spec.ID == c {
			return spec, true
		}
	}
	return CriterionSpec{}, false
}

// ParseCriterion maps a wire name back to a criterion.
func ParseCriterion(s string) (Criterion, bool) {
	for _, spec := range criteriaTable {
		if spec.Name == s {
			return spec.ID, true
		}
	}
	return 0, false
}
