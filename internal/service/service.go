// service содержит бизнес-логику harvest-сервиса: менеджер границ
// поиска, умный fetcher, кэш результатов, шлюз дедупликации и очередь
// задач. Всё разделяемое изменяемое состояние живёт в хранилище;
// межпроцессная координация идёт только через него.
package service

import (
	"errors"

	"github.com/morozovaek/harvest-service/internal/config"
	"github.com/morozovaek/harvest-service/internal/models"
	"github.com/morozovaek/harvest-service/internal/source"
	"github.com/morozovaek/harvest-service/internal/storage"
	"github.com/morozovaek/harvest-service/internal/storage/redismirror"
)

var (
	// ErrNotFound — сущность отсутствует.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument - некорректные входные аргументы.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrSourceUnavailable — внешний источник полностью недоступен:
	// ни один вызов прогона не удался.
	ErrSourceUnavailable = errors.New("source unavailable")
)

// Service — описывает бизнес-логику harvest-service.
type Service struct {
	storage storage.Storage
	source  source.SearchSource
	// mirror - необязательное быстрое зеркало чекпоинтов; nil — отключено.
	mirror redismirror.Mirror
	// cmp - компаратор внешних идентификаторов в нативном порядке источника.
	cmp models.IDComparator
	cfg config.Config
}

// Option настраивает Service при создании.
type Option func(*Service)

// WithMirror подключает best-effort зеркало чекпоинтов.
func WithMirror(m redismirror.Mirror) Option {
	return func(s *Service) { s.mirror = m }
}

// WithIDComparator задаёт компаратор идентификаторов источника.
// По умолчанию используется models.CompareNumericIDs.
func WithIDComparator(cmp models.IDComparator) Option {
	return func(s *Service) { s.cmp = cmp }
}

// New создает новый экземпляр Service.
func New(storage storage.Storage, src source.SearchSource, cfg config.Config, opts ...Option) *Service {
	s := &Service{
		storage: storage,
		source:  src,
		cmp:     models.CompareNumericIDs,
		cfg:     cfg,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}
