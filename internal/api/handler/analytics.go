package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/vfg2006/pipeline-analytics-api/internal/domain"
	"github.com/vfg2006/pipeline-analytics-api/internal/usecases/analyzing"
	"github.com/vfg2006/pipeline-analytics-api/pkg/apiErrors"
	"github.com/vfg2006/pipeline-analytics-api/pkg/log"
)

// GetAnalytics calcula as análises do funil para o período e filtros da query
func GetAnalytics(service analyzing.Analyzer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		req, err := parseAnalyticsRequest(r.URL.Query(), time.Now().UTC())
		if err != nil {
			apiErrors.WriteDomainError(w, err)
			return
		}

		logger.WithFields(log.Fields{
			"period": req.Period.Label(),
			"owner":  req.Filters.Owner,
		}).Info("analytics: calculando análises do funil")

		result, err := service.ComputeAnalytics(r.Context(), req)
		if err != nil {
			logger.WithError(err).Error("analytics: erro ao calcular análises")
			apiErrors.WriteDomainError(w, err)
			return
		}

		writeJSON(w, r, http.StatusOK, result)
	})
}

// GetAnalyticsSnapshot retorna a análise armazenada de um mês
func GetAnalyticsSnapshot(service analyzing.Analyzer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())
		query := r.URL.Query()

		period := query.Get("period")
		if period == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "É necessário informar o período (mm-yyyy)", nil)
			return
		}

		entry, err := service.GetSnapshot(r.Context(), period, filtersFrom(query))
		if err != nil {
			logger.WithError(err).WithField("period", period).Warn("analytics-snapshot: snapshot indisponível")
			apiErrors.WriteDomainError(w, err)
			return
		}

		writeJSON(w, r, http.StatusOK, entry)
	})
}

// GetAvailablePeriods retorna os meses com snapshots armazenados
func GetAvailablePeriods(service analyzing.Analyzer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		periods, err := service.GetAvailablePeriods(r.Context())
		if err != nil {
			logger.WithError(err).Error("analytics-periods: erro ao buscar períodos disponíveis")
			apiErrors.WriteDomainError(w, err)
			return
		}

		writeJSON(w, r, http.StatusOK, periods)
	})
}

func filtersFrom(query url.Values) domain.Filters {
	return domain.Filters{
		Owner:      query.Get("owner"),
		Channel:    query.Get("channel"),
		Subchannel: query.Get("subchannel"),
	}
}

// parseAnalyticsRequest aceita period=mm-yyyy ou start/end (yyyy-mm-dd, end inclusivo).
// Sem nenhum dos dois usa o mês de now.
func parseAnalyticsRequest(query url.Values, now time.Time) (analyzing.Request, error) {
	req := analyzing.Request{Filters: filtersFrom(query)}

	switch {
	case query.Get("period") != "":
		period, err := domain.ParseMonthPeriod(query.Get("period"))
		if err != nil {
			return req, err
		}
		req.Period = period
	case query.Get("start") != "" || query.Get("end") != "":
		start, err := time.Parse(time.DateOnly, query.Get("start"))
		if err != nil {
			return req, fmt.Errorf("%w: start %q", domain.ErrInvalidPeriod, query.Get("start"))
		}
		end, err := time.Parse(time.DateOnly, query.Get("end"))
		if err != nil {
			return req, fmt.Errorf("%w: end %q", domain.ErrInvalidPeriod, query.Get("end"))
		}
		period, err := domain.NewPeriod(start, end.AddDate(0, 0, 1))
		if err != nil {
			return req, err
		}
		req.Period = period
	default:
		req.Period = domain.MonthPeriod(now)
	}

	if raw := query.Get("bucket"); raw != "" {
		size, err := domain.ParseBucketSize(raw)
		if err != nil {
			return req, err
		}
		req.BucketSize = size
	}

	if raw := query.Get("buckets"); raw != "" {
		count, err := strconv.Atoi(raw)
		if err != nil {
			return req, fmt.Errorf("%w: buckets %q", domain.ErrInvalidPeriod, raw)
		}
		if err := domain.ValidateBucketCount(count); err != nil {
			return req, err
		}
		req.BucketCount = count
	}

	return req, nil
}
