package dto

type InsightResponse struct {
	Insight string `json:"insight"`
}
