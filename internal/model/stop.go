package model

// TripStop представляет остановку (точку) маршрута с привязанными медиафайлами.
type TripStop struct {
	ID        string   `bson:"_id" json:"id"`             // стабильный идентификатор вида "Spot-01"
	Name      string   `bson:"name" json:"name"`          // полное имя из геокодера
	ShortName string   `bson:"shortName" json:"shortName"` // короткое имя (первый сегмент до запятой)
	Lat       *float64 `bson:"lat" json:"lat"`            // nil, если геокодирование не удалось
	Lng       *float64 `bson:"lng" json:"lng"`
	Seq       int      `bson:"seq" json:"seq"`            // порядковый номер остановки, с 1 без пропусков
	Media     []string `bson:"media" json:"media"`        // пути файлов в хранилище блобов
}

// HasCoords сообщает, известны ли координаты остановки.
func (s TripStop) HasCoords() bool {
	return s.Lat != nil && s.Lng != nil
}
