package models

import "errors"

var (
	// ErrReportNotFound - сообщение с таким id не существует
	ErrReportNotFound = errors.New("report not found")
	// ErrInvalidStatusTransition - попытка вернуть статус назад без override
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	// ErrUnknownConnection - соединение не зарегистрировано в хабе
	ErrUnknownConnection = errors.New("unknown connection")
	// ErrInvalidGrid - некорректные параметры сетки риска
	ErrInvalidGrid = errors.New("invalid grid parameters")
	// ErrProviderDisabled - у внешнего провайдера нет API ключа
	ErrProviderDisabled = errors.New("provider disabled")
	// ErrHistoryUnavailable - не удалось прочитать исторические сообщения
	ErrHistoryUnavailable = errors.New("historical incidents unavailable")
)
