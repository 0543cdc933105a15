package constants

// Типы этапов производственного маршрута. Набор фиксированный,
// этапы с другим типом не создаются.
var StageTypes = map[string]bool{
	"punching":           true,
	"printing":           true,
	"lamination":         true,
	"coating":            true,
	"slitting_packaging": true,
	"rework":             true,
}

// Категории материалов, которые можно списывать на этапе каждого типа.
var StageMaterialCategories = map[string][]string{
	"punching":           {"substrate"},
	"printing":           {"substrate", "ink", "solvent"},
	"lamination":         {"film", "adhesive"},
	"coating":            {"coating", "solvent"},
	"slitting_packaging": {"core", "packaging"},
	"rework":             {},
}
