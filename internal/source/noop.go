package source

import "context"

// NoopSource — источник-заглушка для автономного запуска бинаря без
// внешнего API: на любой запрос отвечает «результатов больше нет».
// Боевой транспорт подключается вместо неё при сборке сервиса;
// библиотечные потребители передают свою реализацию SearchSource.
type NoopSource struct{}

// Search возвращает пустой результат без ошибки.
func (NoopSource) Search(ctx context.Context, _ SearchRequest) (*SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &SearchResult{}, nil
}

var _ SearchSource = NoopSource{}
