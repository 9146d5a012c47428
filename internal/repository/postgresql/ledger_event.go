package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/teamzen/hris-backend-go/internal/domain/leave"
	"github.com/teamzen/hris-backend-go/internal/pkg/database"
)

type ledgerEventRepositoryImpl struct {
	db *database.DB
}

func NewLedgerEventRepository(db *database.DB) leave.LedgerEventRepository {
	return &ledgerEventRepositoryImpl{db: db}
}

// Append implements leave.LedgerEventRepository.
func (l *ledgerEventRepositoryImpl) Append(ctx context.Context, event leave.LedgerEvent) (leave.LedgerEvent, error) {
	q := GetQuerier(ctx, l.db)

	metadata := event.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return leave.LedgerEvent{}, fmt.Errorf("encode ledger event metadata: %w", err)
	}

	query := `
		INSERT INTO leave_ledger_events (id, balance_id, request_id, event_type, days, actor_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING created_at
	`
	event.ID = newID()
	err = q.QueryRow(ctx, query,
		event.ID, event.BalanceID, event.RequestID, string(event.Type), event.Days, event.ActorID, metadataJSON,
	).Scan(&event.CreatedAt)
	if err != nil {
		return leave.LedgerEvent{}, fmt.Errorf("insert ledger event: %w", err)
	}
	return event, nil
}

// HasRequestEvent implements leave.LedgerEventRepository.
func (l *ledgerEventRepositoryImpl) HasRequestEvent(ctx context.Context, requestID string, types ...leave.LedgerEventType) (bool, error) {
	q := GetQuerier(ctx, l.db)
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, string(t))
	}

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM leave_ledger_events WHERE request_id = $1 AND event_type = ANY($2))`
	if err := q.QueryRow(ctx, query, requestID, names).Scan(&exists); err != nil {
		return false, fmt.Errorf("check request events: %w", err)
	}
	return exists, nil
}

// HasBalanceEvent implements leave.LedgerEventRepository.
func (l *ledgerEventRepositoryImpl) HasBalanceEvent(ctx context.Context, balanceID string, eventType leave.LedgerEventType) (bool, error) {
	q := GetQuerier(ctx, l.db)
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM leave_ledger_events WHERE balance_id = $1 AND event_type = $2)`
	if err := q.QueryRow(ctx, query, balanceID, string(eventType)).Scan(&exists); err != nil {
		return false, fmt.Errorf("check balance events: %w", err)
	}
	return exists, nil
}

// ListByBalance implements leave.LedgerEventRepository.
func (l *ledgerEventRepositoryImpl) ListByBalance(ctx context.Context, balanceID string) ([]leave.LedgerEvent, error) {
	q := GetQuerier(ctx, l.db)
	query := `
		SELECT id, balance_id, request_id, event_type, days, actor_id, metadata, created_at
		FROM leave_ledger_events
		WHERE balance_id = $1
		ORDER BY created_at, id
	`
	rows, err := q.Query(ctx, query, balanceID)
	if err != nil {
		return nil, fmt.Errorf("list ledger events: %w", err)
	}
	defer rows.Close()

	var events []leave.LedgerEvent
	for rows.Next() {
		var (
			e            leave.LedgerEvent
			eventType    string
			metadataJSON []byte
		)
		if err := rows.Scan(&e.ID, &e.BalanceID, &e.RequestID, &eventType, &e.Days, &e.ActorID, &metadataJSON, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger event: %w", err)
		}
		e.Type = leave.LedgerEventType(eventType)
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &e.Metadata); err != nil {
				return nil, fmt.Errorf("decode ledger event metadata: %w", err)
			}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

type holidayRepositoryImpl struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) leave.HolidayRepository {
	return &holidayRepositoryImpl{db: db}
}

// Create implements leave.HolidayRepository.
func (h *holidayRepositoryImpl) Create(ctx context.Context, holiday leave.CompanyHoliday) (leave.CompanyHoliday, error) {
	q := GetQuerier(ctx, h.db)
	query := `
		INSERT INTO company_holidays (id, organization_id, name, holiday_date, is_optional, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`
	holiday.ID = newID()
	err := q.QueryRow(ctx, query,
		holiday.ID, holiday.OrganizationID, holiday.Name, holiday.Date, holiday.IsOptional,
	).Scan(&holiday.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return leave.CompanyHoliday{}, leave.ErrHolidayExists
		}
		return leave.CompanyHoliday{}, fmt.Errorf("insert holiday: %w", err)
	}
	return holiday, nil
}

// ListByOrganization implements leave.HolidayRepository.
func (h *holidayRepositoryImpl) ListByOrganization(ctx context.Context, organizationID string, year *int) ([]leave.CompanyHoliday, error) {
	q := GetQuerier(ctx, h.db)
	query := `
		SELECT id, organization_id, name, holiday_date, is_optional, created_at
		FROM company_holidays
		WHERE organization_id = $1 AND ($2::int IS NULL OR EXTRACT(YEAR FROM holiday_date) = $2::int)
		ORDER BY holiday_date
	`
	rows, err := q.Query(ctx, query, organizationID, year)
	if err != nil {
		return nil, fmt.Errorf("list holidays: %w", err)
	}
	defer rows.Close()

	var holidays []leave.CompanyHoliday
	for rows.Next() {
		var (
			holiday leave.CompanyHoliday
			date    time.Time
		)
		if err := rows.Scan(&holiday.ID, &holiday.OrganizationID, &holiday.Name, &date, &holiday.IsOptional, &holiday.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan holiday: %w", err)
		}
		holiday.Date = leave.DateOf(date)
		holidays = append(holidays, holiday)
	}
	return holidays, rows.Err()
}
