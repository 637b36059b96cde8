package geo

import (
	"math"

	"github.com/kurtaconger/egm/internal/model"
)

// earthRadiusMiles - радиус Земли в милях для формулы гаверсинусов.
const earthRadiusMiles = 3958.8

// Distance вычисляет расстояние по дуге большого круга между двумя точками
// (широта/долгота в градусах) по формуле гаверсинусов. Результат в милях.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	lat1Rad := toRad(lat1)
	lat2Rad := toRad(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLng/2)*math.Sin(dLng/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMiles * c
}

// Nearest возвращает ближайшую к точке (lat, lng) остановку с известными
// координатами и расстояние до неё. Сравнение строгое "<", поэтому при равных
// расстояниях побеждает остановка, стоящая в списке раньше. Если ни у одной
// остановки нет координат, ok равен false - назначение невозможно.
func Nearest(lat, lng float64, stops []model.TripStop) (nearest model.TripStop, distance float64, ok bool) {
	minDistance := math.Inf(1)
	for _, stop := range stops {
		if !stop.HasCoords() {
			continue
		}
		d := Distance(lat, lng, *stop.Lat, *stop.Lng)
		if d < minDistance {
			minDistance = d
			nearest = stop
			ok = true
		}
	}
	if !ok {
		return model.TripStop{}, 0, false
	}
	return nearest, minDistance, true
}
