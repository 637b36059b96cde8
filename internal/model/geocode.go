package model

// GeocodeResult представляет результат геокодирования одной строки описания места.
// "Location not found" и "Error occurred" - штатные значения-сигналы с пустыми
// координатами, они показываются оператору для исправления, а не считаются ошибкой.
type GeocodeResult struct {
	Name      string   `json:"name"`      // полный адрес из геокодера
	ShortName string   `json:"shortName"` // первый сегмент адреса до запятой
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
}
