package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shenikar/disaster_alert_system/internal/models"
	"github.com/shenikar/disaster_alert_system/internal/service"
	"github.com/shenikar/disaster_alert_system/pkg/geo"
)

// DB - подмножество pgxpool.Pool, используемое репозиторием
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type ReportRepository struct {
	db DB
}

func NewReportRepository(db DB) service.ReportRepository {
	return &ReportRepository{db: db}
}

const reportColumns = `
	id,
	reporter_name,
	reporter_contact,
	description,
	incident_type,
	urgency,
	ST_Y(location::geometry) AS latitude,
	ST_X(location::geometry) AS longitude,
	address,
	media_url,
	witness_count,
	estimated_affected,
	status,
	verified,
	ai_category,
	priority,
	confidence,
	created_at,
	updated_at`

// scanReport читает строку reports; координата может отсутствовать
func scanReport(row pgx.Row) (*models.IncidentReport, error) {
	r := &models.IncidentReport{}
	var (
		lat, lng *float64
		address  string
	)
	err := row.Scan(
		&r.ID,
		&r.ReporterName,
		&r.ReporterContact,
		&r.Description,
		&r.IncidentType,
		&r.Urgency,
		&lat,
		&lng,
		&address,
		&r.MediaURL,
		&r.WitnessCount,
		&r.EstimatedAffected,
		&r.Status,
		&r.Verified,
		&r.AICategory,
		&r.Priority,
		&r.Confidence,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lat != nil && lng != nil {
		r.Location = &models.Location{Latitude: *lat, Longitude: *lng, Address: address}
	}
	return r, nil
}

// Save сохраняет новое сообщение; id и метки времени выдает база
func (r *ReportRepository) Save(ctx context.Context, report *models.IncidentReport) error {
	query := `
		INSERT INTO reports (
			reporter_name, reporter_contact, description, incident_type, urgency,
			location, address, media_url, witness_count, estimated_affected,
			status, verified, ai_category, priority, confidence
		)
		VALUES (
			$1, $2, $3, $4, $5,
			CASE WHEN $6::float8 IS NULL THEN NULL ELSE ST_SetSRID(ST_MakePoint($6, $7), 4326)::geography END,
			$8, $9, $10, $11, $12, $13, $14, $15, $16
		)
		RETURNING id, created_at, updated_at;
	`
	var (
		lng, lat *float64
		address  string
	)
	if report.Location != nil {
		lng, lat = &report.Location.Longitude, &report.Location.Latitude
		address = report.Location.Address
	}

	err := r.db.QueryRow(ctx, query,
		report.ReporterName,
		report.ReporterContact,
		report.Description,
		string(report.IncidentType),
		string(report.Urgency),
		lng,
		lat,
		address,
		report.MediaURL,
		report.WitnessCount,
		report.EstimatedAffected,
		string(report.Status),
		report.Verified,
		report.AICategory,
		string(report.Priority),
		report.Confidence,
	).Scan(&report.ID, &report.CreatedAt, &report.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// FindByID возвращает сообщение вместе с заметками
func (r *ReportRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.IncidentReport, error) {
	query := `SELECT` + reportColumns + `
		FROM reports
		WHERE id = $1;
	`
	report, err := scanReport(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("report %s: %w", id, models.ErrReportNotFound)
		}
		return nil, fmt.Errorf("failed to get report by id: %w", err)
	}

	notes, err := r.ListNotes(ctx, id)
	if err != nil {
		return nil, err
	}
	report.Notes = notes
	return report, nil
}

// List возвращает страницу сообщений, новые первыми
func (r *ReportRepository) List(ctx context.Context, page, pageSize int, verifiedOnly bool) ([]*models.IncidentReport, error) {
	offset := (page - 1) * pageSize

	query := `SELECT` + reportColumns + `
		FROM reports
		WHERE ($1 = false OR verified = true)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.db.Query(ctx, query, verifiedOnly, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return collectReports(rows, "List")
}

// FindReportsNear возвращает сообщения в прямоугольнике, созданные не раньше since.
// Прямоугольник через антимеридиан ищется по двум конвертам
func (r *ReportRepository) FindReportsNear(ctx context.Context, bbox models.BBox, since time.Time) ([]*models.IncidentReport, error) {
	parts := geo.SplitAntimeridian(bbox)
	envelopes := make([]string, 0, len(parts))
	args := make([]any, 0, len(parts)*4+1)
	for i, p := range parts {
		n := i * 4
		envelopes = append(envelopes, fmt.Sprintf("location::geometry && ST_MakeEnvelope($%d, $%d, $%d, $%d, 4326)", n+1, n+2, n+3, n+4))
		args = append(args, p.MinLng, p.MinLat, p.MaxLng, p.MaxLat)
	}
	args = append(args, since)

	query := `SELECT` + reportColumns + fmt.Sprintf(`
		FROM reports
		WHERE
			location IS NOT NULL
			AND (%s)
			AND created_at >= $%d;
	`, strings.Join(envelopes, " OR "), len(args))
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find reports near: %w", err)
	}
	return collectReports(rows, "FindReportsNear")
}

func collectReports(rows pgx.Rows, method string) ([]*models.IncidentReport, error) {
	defer rows.Close()

	reports := make([]*models.IncidentReport, 0)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report row in %s: %w", method, err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration in %s: %w", method, err)
	}
	return reports, nil
}

// UpdateStatus меняет статус сообщения. Без override статус не может уйти назад;
// проверка выполняется в самом UPDATE, чтобы параллельные запросы не откатили статус
func (r *ReportRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ReportStatus, override bool) error {
	query := `
		UPDATE reports SET
			status = $1,
			updated_at = NOW()
		WHERE id = $2
			AND ($3 OR array_position($4::text[], status::text) <= array_position($4::text[], $1::text));
	`
	cmdTag, err := r.db.Exec(ctx, query, string(status), id, override, statusOrder())
	if err != nil {
		return fmt.Errorf("failed to update report status: %w", err)
	}
	if cmdTag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	err = r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM reports WHERE id = $1);`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check report existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("report %s: %w", id, models.ErrReportNotFound)
	}
	return fmt.Errorf("report %s -> %s: %w", id, status, models.ErrInvalidStatusTransition)
}

func statusOrder() []string {
	out := make([]string, len(models.StatusOrder))
	for i, s := range models.StatusOrder {
		out[i] = string(s)
	}
	return out
}

// UpdateVerification записывает решение оператора о проверке и приоритете
func (r *ReportRepository) UpdateVerification(ctx context.Context, id uuid.UUID, verified bool, priority models.Priority) error {
	query := `
		UPDATE reports SET
			verified = $1,
			priority = $2,
			updated_at = NOW()
		WHERE id = $3;
	`
	cmdTag, err := r.db.Exec(ctx, query, verified, string(priority), id)
	if err != nil {
		return fmt.Errorf("failed to update report verification: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("report %s: %w", id, models.ErrReportNotFound)
	}
	return nil
}

// AddNote добавляет заметку оператора; заметки не редактируются
func (r *ReportRepository) AddNote(ctx context.Context, reportID uuid.UUID, note *models.ReportNote) error {
	query := `
		INSERT INTO report_notes (report_id, author, text)
		SELECT $1, $2, $3
		WHERE EXISTS (SELECT 1 FROM reports WHERE id = $1)
		RETURNING id, created_at;
	`
	err := r.db.QueryRow(ctx, query, reportID, note.Author, note.Text).Scan(&note.ID, &note.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("report %s: %w", reportID, models.ErrReportNotFound)
		}
		return fmt.Errorf("failed to add report note: %w", err)
	}
	return nil
}

// ListNotes возвращает заметки в порядке добавления
func (r *ReportRepository) ListNotes(ctx context.Context, reportID uuid.UUID) ([]models.ReportNote, error) {
	query := `
		SELECT id, author, text, created_at
		FROM report_notes
		WHERE report_id = $1
		ORDER BY created_at, id;
	`
	rows, err := r.db.Query(ctx, query, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to list report notes: %w", err)
	}
	defer rows.Close()

	notes := make([]models.ReportNote, 0)
	for rows.Next() {
		var n models.ReportNote
		if err := rows.Scan(&n.ID, &n.Author, &n.Text, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report note: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration in ListNotes: %w", err)
	}
	return notes, nil
}

// Stats собирает счетчики для панели оператора. Тренд считает сервис
func (r *ReportRepository) Stats(ctx context.Context, now time.Time) (*models.ReportStats, error) {
	stats := &models.ReportStats{
		ByStatus:       make(map[models.ReportStatus]int),
		ByUrgency:      make(map[models.Urgency]int),
		ByIncidentType: make(map[models.IncidentType]int),
	}

	groupQuery := `
		SELECT status, urgency, incident_type, verified, COUNT(*)
		FROM reports
		GROUP BY status, urgency, incident_type, verified;
	`
	rows, err := r.db.Query(ctx, groupQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query report stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status       models.ReportStatus
			urgency      models.Urgency
			incidentType models.IncidentType
			verified     bool
			count        int
		)
		if err := rows.Scan(&status, &urgency, &incidentType, &verified, &count); err != nil {
			return nil, fmt.Errorf("failed to scan report stats row: %w", err)
		}
		stats.Total += count
		stats.ByStatus[status] += count
		stats.ByUrgency[urgency] += count
		stats.ByIncidentType[incidentType] += count
		if verified {
			stats.Verified += count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iteration in Stats: %w", err)
	}

	windowQuery := `
		SELECT
			COUNT(*) FILTER (WHERE created_at >= $1),
			COUNT(*) FILTER (WHERE created_at >= $2),
			COUNT(*) FILTER (WHERE created_at >= $3 AND created_at < $2),
			COUNT(*) FILTER (WHERE status <> 'resolved' AND urgency = 'immediate')
		FROM reports;
	`
	err = r.db.QueryRow(ctx, windowQuery,
		now.Add(-24*time.Hour),
		now.Add(-7*24*time.Hour),
		now.Add(-14*24*time.Hour),
	).Scan(&stats.Last24Hours, &stats.RecentWeek, &stats.PreviousWeek, &stats.ActiveEmergencies)
	if err != nil {
		return nil, fmt.Errorf("failed to query report windows: %w", err)
	}
	return stats, nil
}
