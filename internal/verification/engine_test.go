package verification

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shenikar/disaster_alert_system/internal/metrics"
	"github.com/shenikar/disaster_alert_system/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

type fakeText struct {
	res   models.TextClassification
	err   error
	delay time.Duration
	panic bool
}

func (f fakeText) ClassifyText(ctx context.Context, _ string) (models.TextClassification, error) {
	if f.panic {
		panic("boom")
	}
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return models.TextClassification{}, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	return f.res, f.err
}

type fakeImage struct {
	relevant bool
	err      error
	called   *bool
}

func (f fakeImage) ClassifyImage(_ context.Context, _ string) (models.ImageClassification, error) {
	if f.called != nil {
		*f.called = true
	}
	return models.ImageClassification{Relevant: f.relevant}, f.err
}

func newEngine(text fakeText, image fakeImage) (*Engine, *bytes.Buffer) {
	logger := logrus.New()
	buf := &bytes.Buffer{}
	logger.SetOutput(buf)
	cfg := DefaultConfig()
	cfg.OracleTimeout = 50 * time.Millisecond
	return NewEngine(text, image, cfg, logger, metrics.NewMetricsForTesting()), buf
}

func TestVerify_Rules(t *testing.T) {
	okText := fakeText{res: models.TextClassification{Label: "fire", Confidence: 0.8}}
	failText := fakeText{err: errors.New("oracle down")}

	tests := []struct {
		name       string
		report     models.IncidentReport
		text       fakeText
		image      fakeImage
		verified   bool
		priority   models.Priority
		category   string
		confidence float64
	}{
		{
			name:       "keyword match with urgent urgency",
			report:     models.IncidentReport{Description: "Kitchen FIRE on 3rd floor", IncidentType: models.IncidentOther, Urgency: models.UrgencyUrgent},
			text:       okText,
			verified:   true,
			priority:   models.PriorityMedium,
			category:   "fire",
			confidence: 0.7,
		},
		{
			name:       "image corroborated",
			report:     models.IncidentReport{Description: "look at this", IncidentType: models.IncidentOther, Urgency: models.UrgencyLow, MediaURL: "https://x/y.jpg"},
			text:       okText,
			image:      fakeImage{relevant: true},
			verified:   true,
			priority:   models.PriorityLow,
			category:   "fire",
			confidence: 0.9,
		},
		{
			name:       "unverified low",
			report:     models.IncidentReport{Description: "strange noise", IncidentType: models.IncidentOther, Urgency: models.UrgencyLow, WitnessCount: 1},
			text:       failText,
			verified:   false,
			priority:   models.PriorityLow,
			category:   "other",
			confidence: 0.3,
		},
		{
			name:       "high priority type",
			report:     models.IncidentReport{Description: "water rising", IncidentType: models.IncidentFlood, Urgency: models.UrgencyLow},
			text:       failText,
			verified:   false,
			priority:   models.PriorityHigh,
			category:   "flood",
			confidence: 0.3,
		},
		{
			name:       "infrastructure is medium",
			report:     models.IncidentReport{Description: "bridge cracked", IncidentType: models.IncidentInfrastructureDamage, Urgency: models.UrgencyModerate},
			text:       failText,
			verified:   false,
			priority:   models.PriorityMedium,
			category:   "infrastructure-damage",
			confidence: 0.3,
		},
		{
			name:       "crowd raises low to medium",
			report:     models.IncidentReport{Description: "tree down", IncidentType: models.IncidentOther, Urgency: models.UrgencyLow, EstimatedAffected: 6},
			text:       failText,
			verified:   true,
			priority:   models.PriorityMedium,
			category:   "other",
			confidence: 0.7,
		},
		{
			name:       "crowd does not lower high",
			report:     models.IncidentReport{Description: "tree down", IncidentType: models.IncidentOther, Urgency: models.UrgencyImmediate, WitnessCount: 3},
			text:       failText,
			verified:   true,
			priority:   models.PriorityHigh,
			category:   "other",
			confidence: 0.7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newEngine(tt.text, tt.image)
			report := tt.report

			v := e.Verify(context.Background(), &report)

			assert.Equal(t, tt.verified, v.Verified)
			assert.Equal(t, tt.priority, v.Priority)
			assert.Equal(t, tt.category, v.Category)
			assert.Equal(t, tt.confidence, v.Confidence)
		})
	}
}

func TestVerify_MissingPersonAlwaysVerifiedHigh(t *testing.T) {
	for _, urgency := range []models.Urgency{models.UrgencyImmediate, models.UrgencyUrgent, models.UrgencyModerate, models.UrgencyLow} {
		for _, text := range []fakeText{{err: errors.New("down")}, {res: models.TextClassification{Label: "injury"}}} {
			e, _ := newEngine(text, fakeImage{err: errors.New("down")})
			report := &models.IncidentReport{
				Description:  "my brother did not come home",
				IncidentType: models.IncidentMissingPerson,
				Urgency:      urgency,
				MediaURL:     "https://x/y.jpg",
			}

			v := e.Verify(context.Background(), report)

			assert.True(t, v.Verified)
			assert.Equal(t, models.PriorityHigh, v.Priority)
		}
	}
}

func TestVerify_CrowdNeverBelowMedium(t *testing.T) {
	cases := []struct{ witnesses, affected int }{{2, 0}, {0, 6}, {5, 100}}
	for _, c := range cases {
		for _, it := range models.IncidentTypes {
			e, _ := newEngine(fakeText{err: errors.New("down")}, fakeImage{})
			report := &models.IncidentReport{
				Description:       "something happened",
				IncidentType:      it,
				Urgency:           models.UrgencyLow,
				WitnessCount:      c.witnesses,
				EstimatedAffected: c.affected,
			}

			v := e.Verify(context.Background(), report)

			assert.GreaterOrEqual(t, v.Priority.Rank(), models.PriorityMedium.Rank(), "type %s", it)
		}
	}
}

func TestVerify_OracleFailureFallsBackToIncidentType(t *testing.T) {
	e, logs := newEngine(fakeText{err: errors.New("503")}, fakeImage{err: errors.New("timeout")})
	report := &models.IncidentReport{
		Description:  "road blocked by landslide",
		IncidentType: models.IncidentBlockedRoad,
		Urgency:      models.UrgencyModerate,
		MediaURL:     "https://x/y.jpg",
	}

	v := e.Verify(context.Background(), report)

	assert.Equal(t, "blocked-road", v.Category)
	assert.False(t, v.Details.ImageVerified)
	assert.True(t, v.Details.Fallback)
	assert.Equal(t, models.UnverifiedLabel, v.Details.TextLabel)
	assert.Contains(t, logs.String(), "Text classifier failed")
}

func TestVerify_OracleTimeoutIsFailure(t *testing.T) {
	e, _ := newEngine(fakeText{delay: time.Second, res: models.TextClassification{Label: "fire"}}, fakeImage{})
	report := &models.IncidentReport{Description: "x", IncidentType: models.IncidentEarthquake, Urgency: models.UrgencyLow}

	start := time.Now()
	v := e.Verify(context.Background(), report)

	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, "earthquake", v.Category)
}

func TestVerify_PanickingOracleStillReturnsVerdict(t *testing.T) {
	e, logs := newEngine(fakeText{panic: true}, fakeImage{})
	report := &models.IncidentReport{Description: "flood in the basement", IncidentType: models.IncidentFlood, Urgency: models.UrgencyLow}

	v := e.Verify(context.Background(), report)

	assert.True(t, v.Verified)
	assert.Equal(t, "flood", v.Category)
	assert.Equal(t, models.PriorityHigh, v.Priority)
	assert.Contains(t, logs.String(), "Classifier panicked")
}

func TestVerify_NoMediaSkipsImageClassifier(t *testing.T) {
	called := false
	e, _ := newEngine(fakeText{err: errors.New("down")}, fakeImage{relevant: true, called: &called})

	v := e.Verify(context.Background(), &models.IncidentReport{Description: "x", IncidentType: models.IncidentOther, Urgency: models.UrgencyLow})

	assert.False(t, called)
	assert.False(t, v.Verified)
}

func TestVerify_NilReport(t *testing.T) {
	e, _ := newEngine(fakeText{}, fakeImage{})

	v := e.Verify(context.Background(), nil)

	assert.Equal(t, models.PriorityLow, v.Priority)
	assert.True(t, v.Details.Fallback)
}
