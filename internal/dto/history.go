package dto

import "github.com/GregMSThompson/novaspeak/internal/models"

type HistoryResponse struct {
	Date        string                   `json:"date"`
	ShowIgnored bool                     `json:"showIgnored"`
	Stats       []models.DailyFieldStats `json:"stats"`
}
