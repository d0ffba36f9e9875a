package service

import (
	"context"
	"log"

	"github.com/Leganyst/roadmate/internal/model"
	"github.com/Leganyst/roadmate/internal/repository"
)

// recordEvent пишет событие аудита. Ошибка только логируется: журнал не должен
// откатывать уже выполненную операцию.
func recordEvent(ctx context.Context, events repository.EventRepository, e *model.Event) {
	if events == nil {
		return
	}
	if err := events.Create(ctx, e); err != nil {
		log.Printf("record %s event: %v", e.EventType, err)
	}
}
