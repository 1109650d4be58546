package health

import "math"

// AverageRating is the mean of the ratings rounded to one decimal, or 0
// when there are none.
func AverageRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	total := 0
	for _, r := range ratings {
		total += r
	}
	return round1(float64(total) / float64(len(ratings)))
}

// TasteProfile counts how often each taste label was reported. Labels that
// never occur are absent from the map rather than zero.
func TasteProfile(tastes []Taste) map[Taste]int {
	profile := make(map[Taste]int)
	for _, t := range tastes {
		profile[t]++
	}
	return profile
}

// AverageHealthScore is the rounded mean of the given dish scores, or 0
// for a menu without dishes.
func AverageHealthScore(scores []int) int {
	if len(scores) == 0 {
		return 0
	}
	total := 0
	for _, s := range scores {
		total += s
	}
	return clamp(int(math.Round(float64(total)/float64(len(scores)))), MinScore, MaxScore)
}

// Summary is the per-recommendation breakdown of a set of dish scores.
type Summary struct {
	TotalDishes        int `json:"totalDishes"`
	Excellent          int `json:"excellent"`
	Good               int `json:"good"`
	Caution            int `json:"caution"`
	Avoid              int `json:"avoid"`
	AverageHealthScore int `json:"averageHealthScore"`
}

func Summarize(scores []int) Summary {
	s := Summary{
		TotalDishes:        len(scores),
		AverageHealthScore: AverageHealthScore(scores),
	}
	for _, score := range scores {
		switch Recommend(score) {
		case RecommendExcellent:
			s.Excellent++
		case RecommendGood:
			s.Good++
		case RecommendCaution:
			s.Caution++
		default:
			s.Avoid++
		}
	}
	return s
}
