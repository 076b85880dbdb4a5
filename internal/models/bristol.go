package models

// Bristol quality bounds accepted by validation and the stools table.
const (
	BristolMin = 0
	BristolMax = 7
)

// Bristol maps a stool quality value to its Bristol scale description.
var Bristol = map[int]string{
	0: "Отсутствие дефекации",
	1: "Отдельные твёрдые комки, как орехи, трудно проходят [серьезный запор]",
	2: "Колбасовидный, но комковатый [запор или склонность к запору]",
	3: "Колбасовидный с трещинами на поверхности [норма]",
	4: "Колбасовидный гладкий и мягкий [норма]",
	5: "Мягкие маленькие шарики с чёткими краями [склонность к диарее]",
	6: "Рыхлые кусочки с неровными краями, кашицеобразный [диарея]",
	7: "Водянистый, без твёрдых кусочков [сильная диарея]",
}

// BristolDescription returns the scale description for q, or a placeholder
// for values outside the scale.
func BristolDescription(q int) string {
	if d, ok := Bristol[q]; ok {
		return d
	}
	return "неизвестно"
}
