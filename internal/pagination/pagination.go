package pagination

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page описывает одну страницу элементов.
type Page[T any] struct {
	Items    []T  `json:"items"`
	Page     int  `json:"page"`      // номер страницы (с 1)
	PageSize int  `json:"page_size"` // количество элементов на странице
	HasNext  bool `json:"has_next"`
	HasPrev  bool `json:"has_prev"`
	Total    int  `json:"total"`
}

// Normalize подставляет дефолты для некорректных значений и ограничивает размер страницы.
func Normalize(page, pageSize int) (int, int) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if page <= 0 {
		page = 1
	}
	return page, pageSize
}

// Offset: смещение для LIMIT/OFFSET запроса.
func Offset(page, pageSize int) int {
	page, pageSize = Normalize(page, pageSize)
	return (page - 1) * pageSize
}

// FromTotal собирает страницу из уже выбранных из БД элементов и общего количества.
func FromTotal[T any](items []T, total int64, page, pageSize int) Page[T] {
	page, pageSize = Normalize(page, pageSize)
	end := (page-1)*pageSize + len(items)
	return Page[T]{
		Items:    items,
		Page:     page,
		PageSize: pageSize,
		HasPrev:  page > 1,
		HasNext:  int64(end) < total,
		Total:    int(total),
	}
}

// Paginate режет срез в памяти и возвращает страницу с метаданными.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	page, pageSize = Normalize(page, pageSize)

	total := len(items)

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}

	end := start + pageSize
	if end > total {
		end = total
	}

	return Page[T]{
		Items:    items[start:end],
		Page:     page,
		PageSize: pageSize,
		HasNext:  end < total,
		HasPrev:  page > 1,
		Total:    total,
	}
}
