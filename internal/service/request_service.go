package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/Leganyst/roadmate/internal/access"
	"github.com/Leganyst/roadmate/internal/model"
	"github.com/Leganyst/roadmate/internal/repository"
)

// Action: действие провайдера над заявкой.
type Action string

const (
	ActionAccept   Action = "accept"
	ActionReject   Action = "reject"
	ActionComplete Action = "complete"
)

// Таблица переходов. in_progress зарезервирован: ни одно действие в него не переводит.
var transitions = map[Action]struct {
	to   model.RequestStatus
	from map[model.RequestStatus]bool
}{
	ActionAccept: {
		to:   model.RequestStatusAccepted,
		from: map[model.RequestStatus]bool{model.RequestStatusPending: true},
	},
	ActionReject: {
		to: model.RequestStatusCancelled,
		from: map[model.RequestStatus]bool{
			model.RequestStatusPending:    true,
			model.RequestStatusAccepted:   true,
			model.RequestStatusInProgress: true,
		},
	},
	ActionComplete: {
		to: model.RequestStatusCompleted,
		from: map[model.RequestStatus]bool{
			model.RequestStatusAccepted:   true,
			model.RequestStatusInProgress: true,
		},
	},
}

// ParseAction разбирает значение поля формы action.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := transitions[a]; !ok {
		return "", fieldError("action", fmt.Sprintf("Unknown action %q.", s))
	}
	return a, nil
}

// NextStatus возвращает статус после действия. applied=false: заявка уже в
// терминальном или в целевом статусе, менять нечего.
func NextStatus(from model.RequestStatus, a Action) (to model.RequestStatus, applied bool, err error) {
	t, ok := transitions[a]
	if !ok {
		return from, false, fieldError("action", fmt.Sprintf("Unknown action %q.", a))
	}
	if from.Terminal() || from == t.to {
		return from, false, nil
	}
	if !t.from[from] {
		return from, false, fieldError("action", fmt.Sprintf("Cannot %s a request that is %s.", a, strings.ReplaceAll(string(from), "_", " ")))
	}
	return t.to, true, nil
}

// RequestService: жизненный цикл заявок клиент -> провайдер.
type RequestService struct {
	requests   repository.ServiceRequestRepository
	providers  repository.ProviderRepository
	categories repository.CategoryRepository
	events     repository.EventRepository
}

func NewRequestService(
	requests repository.ServiceRequestRepository,
	providers repository.ProviderRepository,
	categories repository.CategoryRepository,
	events repository.EventRepository,
) *RequestService {
	return &RequestService{
		requests:   requests,
		providers:  providers,
		categories: categories,
		events:     events,
	}
}

type ContactFields struct {
	CustomerName     string
	CustomerPhone    string
	CustomerLocation string
	Description      string
}

// Confirmation: что показать клиенту после отправки заявки.
type Confirmation struct {
	Request     *model.ServiceRequest
	CompanyName string
	// Телефон провайдера для показа клиенту.
	ProviderPhone string
	// Номер, по которому провайдер перезвонит клиенту.
	CustomerPhone string
}

// Create создаёт заявку в статусе pending. Провайдер должен быть подтверждён и активен,
// категория: существовать; иначе ErrNotFound и ничего не сохраняется.
func (s *RequestService) Create(
	ctx context.Context,
	customer *model.User,
	providerID, categoryID string,
	contact ContactFields,
) (*Confirmation, error) {
	if customer == nil {
		return nil, ErrPermissionDenied
	}
	pid, err := uuid.Parse(providerID)
	if err != nil {
		return nil, fmt.Errorf("provider %q: %w", providerID, ErrNotFound)
	}
	cid, err := uuid.Parse(categoryID)
	if err != nil {
		return nil, fmt.Errorf("category %q: %w", categoryID, ErrNotFound)
	}

	provider, err := s.providers.GetBookable(ctx, pid)
	if err != nil {
		return nil, notFound(err, "bookable provider %s", pid)
	}
	category, err := s.categories.GetByID(ctx, cid)
	if err != nil {
		return nil, notFound(err, "category %s", cid)
	}

	name := strings.TrimSpace(contact.CustomerName)
	if name == "" {
		name = customer.DisplayName()
	}

	req := &model.ServiceRequest{
		ProviderID:        provider.ID,
		CustomerID:        customer.ID,
		ServiceCategoryID: category.ID,
		CustomerName:      name,
		CustomerPhone:     strings.TrimSpace(contact.CustomerPhone),
		CustomerLocation:  strings.TrimSpace(contact.CustomerLocation),
		Description:       strings.TrimSpace(contact.Description),
		Status:            model.RequestStatusPending,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create service request: %w", err)
	}
	req.Provider = provider
	req.ServiceCategory = category

	recordEvent(ctx, s.events, &model.Event{
		EventType:  model.EventTypeRequestCreated,
		UserID:     &customer.ID,
		RequestID:  &req.ID,
		ProviderID: &provider.ID,
		Details: datatypes.JSONMap{
			"category": category.Name,
			"status":   string(req.Status),
		},
	})

	return &Confirmation{
		Request:       req,
		CompanyName:   provider.CompanyName,
		ProviderPhone: provider.PhoneNumber,
		CustomerPhone: req.CustomerPhone,
	}, nil
}

type TransitionResult struct {
	Request *model.ServiceRequest
	From    model.RequestStatus
	// Applied=false: повторное действие над терминальной заявкой, статус не менялся.
	Applied bool
}

// Transition применяет действие провайдера к заявке.
// Порядок проверок: заявка существует, актор является её провайдером, действие допустимо.
func (s *RequestService) Transition(
	ctx context.Context,
	actor access.Identity,
	requestID string,
	action string,
) (*TransitionResult, error) {
	rid, err := uuid.Parse(requestID)
	if err != nil {
		return nil, fmt.Errorf("service request %q: %w", requestID, ErrNotFound)
	}
	req, err := s.requests.GetByID(ctx, rid)
	if err != nil {
		return nil, notFound(err, "service request %s", rid)
	}
	if !actor.OwnsProvider(req.ProviderID) {
		return nil, fmt.Errorf("service request %s: %w", rid, ErrPermissionDenied)
	}

	a, err := ParseAction(action)
	if err != nil {
		return nil, err
	}
	from := req.Status
	to, applied, err := NextStatus(from, a)
	if err != nil {
		return nil, err
	}

	details := datatypes.JSONMap{
		"action": string(a),
		"from":   string(from),
		"to":     string(to),
		"actor":  actor.User.Username,
	}

	if !applied {
		log.Printf("service request %s: %s ignored, status already %s", rid, a, from)
		recordEvent(ctx, s.events, &model.Event{
			EventType:  model.EventTypeRequestIgnored,
			UserID:     &actor.User.ID,
			RequestID:  &req.ID,
			ProviderID: &req.ProviderID,
			Details:    details,
		})
		return &TransitionResult{Request: req, From: from, Applied: false}, nil
	}

	if err := s.requests.UpdateStatus(ctx, rid, to); err != nil {
		return nil, fmt.Errorf("update service request %s: %w", rid, err)
	}
	req.Status = to

	recordEvent(ctx, s.events, &model.Event{
		EventType:  model.EventTypeRequestTransition,
		UserID:     &actor.User.ID,
		RequestID:  &req.ID,
		ProviderID: &req.ProviderID,
		Details:    details,
	})

	return &TransitionResult{Request: req, From: from, Applied: true}, nil
}

// CustomerRequests: заявки клиента, разложенные по статусам для страницы "Мои заявки".
type CustomerRequests struct {
	All       []model.ServiceRequest
	Pending   []model.ServiceRequest
	Active    []model.ServiceRequest
	Completed []model.ServiceRequest
	Cancelled []model.ServiceRequest
	Total     int
}

func (s *RequestService) ListForCustomer(ctx context.Context, customerID uuid.UUID) (*CustomerRequests, error) {
	all, err := s.requests.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list requests for customer %s: %w", customerID, err)
	}

	out := &CustomerRequests{All: all, Total: len(all)}
	for _, r := range all {
		switch r.Status {
		case model.RequestStatusPending:
			out.Pending = append(out.Pending, r)
		case model.RequestStatusAccepted, model.RequestStatusInProgress:
			out.Active = append(out.Active, r)
		case model.RequestStatusCompleted:
			out.Completed = append(out.Completed, r)
		case model.RequestStatusCancelled:
			out.Cancelled = append(out.Cancelled, r)
		}
	}
	return out, nil
}

// ListForProvider: заявки провайдеру, новые сверху; при limit <= 0 возвращает все.
func (s *RequestService) ListForProvider(ctx context.Context, providerID uuid.UUID, limit int) ([]model.ServiceRequest, error) {
	requests, err := s.requests.ListByProvider(ctx, providerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list requests for provider %s: %w", providerID, err)
	}
	return requests, nil
}

// CountPending считает по всей таблице, независимо от лимита списков.
func (s *RequestService) CountPending(ctx context.Context, providerID uuid.UUID) (int64, error) {
	n, err := s.requests.CountByProvider(ctx, providerID, model.RequestStatusPending)
	if err != nil {
		return 0, fmt.Errorf("count pending requests for provider %s: %w", providerID, err)
	}
	return n, nil
}
