package model

import "errors"

// Доменные ошибки, общие для репозиториев и сервисов.
var (
	// ErrStopNotFound - целевая остановка отсутствует в списке остановок поездки.
	ErrStopNotFound = errors.New("остановка не найдена")
	// ErrTripExists - поездка с таким идентификатором уже создана.
	ErrTripExists = errors.New("поездка уже существует")
	// ErrTripNotFound - поездка с таким идентификатором не найдена.
	ErrTripNotFound = errors.New("поездка не найдена")
	// ErrNoStops - список мест пуст после разбора текста оператора.
	ErrNoStops = errors.New("список остановок пуст")
)
