package model

import "time"

// Trip представляет поездку: запись в реестре поездок с заголовком карты.
type Trip struct {
	ID        string    `bson:"_id" json:"id"`
	Title     string    `bson:"title" json:"title"` // заголовок, отображаемый над картой
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// StopNarrative представляет общий текст-повествование остановки,
// который участники поездки редактируют совместно (last-write-wins).
type StopNarrative struct {
	StopID  string `bson:"_id" json:"stopId"`
	Content string `bson:"content" json:"content"`
}
