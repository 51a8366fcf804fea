package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vfg2006/pipeline-analytics-api/internal/app"
	"github.com/vfg2006/pipeline-analytics-api/internal/domain"
	"github.com/vfg2006/pipeline-analytics-api/internal/usecases/analyzing"
	"github.com/vfg2006/pipeline-analytics-api/pkg/utils"
)

func analyticsCmd() *cobra.Command {
	var (
		start, end, bucket string
		buckets            int
		filters            domain.Filters
	)

	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Calcula as análises do funil e imprime o resultado em JSON",
		Example: `  pipelinectl analytics --start 2024-01-01 --end 2024-03-31
  pipelinectl analytics --start 2024-03-01 --end 2024-03-31 --owner ana --bucket week`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := buildRequest(start, end, bucket, buckets, filters)
			if err != nil {
				return err
			}

			return withApp(cmd.Context(), func(a *app.App) error {
				result, err := a.Analyzer.ComputeAnalytics(cmd.Context(), req)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), utils.PrettyJson(result))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "início do período (yyyy-mm-dd)")
	cmd.Flags().StringVar(&end, "end", "", "fim do período, inclusivo (yyyy-mm-dd)")
	cmd.Flags().StringVar(&bucket, "bucket", "", "granularidade das tendências (day, week, month)")
	cmd.Flags().IntVar(&buckets, "buckets", 0, "quantidade de buckets das tendências")
	cmd.Flags().StringVar(&filters.Owner, "owner", "", "filtra por responsável")
	cmd.Flags().StringVar(&filters.Channel, "channel", "", "filtra por canal")
	cmd.Flags().StringVar(&filters.Subchannel, "subchannel", "", "filtra por subcanal")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func buildRequest(start, end, bucket string, buckets int, filters domain.Filters) (analyzing.Request, error) {
	from, err := time.Parse(time.DateOnly, start)
	if err != nil {
		return analyzing.Request{}, fmt.Errorf("%w: start %q", domain.ErrInvalidPeriod, start)
	}
	to, err := time.Parse(time.DateOnly, end)
	if err != nil {
		return analyzing.Request{}, fmt.Errorf("%w: end %q", domain.ErrInvalidPeriod, end)
	}

	period, err := domain.NewPeriod(from, to.AddDate(0, 0, 1))
	if err != nil {
		return analyzing.Request{}, err
	}

	if buckets != 0 {
		if err := domain.ValidateBucketCount(buckets); err != nil {
			return analyzing.Request{}, err
		}
	}

	req := analyzing.Request{Period: period, Filters: filters, BucketCount: buckets}
	if bucket != "" {
		req.BucketSize, err = domain.ParseBucketSize(bucket)
		if err != nil {
			return analyzing.Request{}, err
		}
	}

	return req, nil
}
