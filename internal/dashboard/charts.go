package dashboard

import (
	"fmt"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/naka-gawa/pr-size-dashboard/internal/domain"
)

// buildPage assembles the dashboard charts into a single renderable page.
func buildPage(records []domain.MetricRecord, summary *Summary) *components.Page {
	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(
		scoreScatter(records, summary),
		weeklyBar(WeeklyMeans(records), summary.TargetScore),
		repoBar(summary),
	)
	return page
}

// targetLine renders the dashed horizontal reference line at the target
// score. It is attached to one series per chart; ECharts draws it across
// the full plot width.
func targetLine(target float64) []charts.SeriesOpts {
	return []charts.SeriesOpts{
		charts.WithMarkLineNameYAxisItemOpts(opts.MarkLineNameYAxisItem{
			Name:  fmt.Sprintf("target %.1f", target),
			YAxis: target,
		}),
		charts.WithMarkLineStyleOpts(opts.MarkLineStyle{
			Symbol: []string{"none", "none"},
			LineStyle: &opts.LineStyle{
				Type:  "dashed",
				Color: "green",
			},
		}),
	}
}

// scoreScatter plots every PR's size score over its merge time, one
// series per repository. The headline summary rides along as the
// chart subtitle.
func scoreScatter(records []domain.MetricRecord, summary *Summary) *charts.Scatter {
	target := summary.TargetScore
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "PR Size Score",
			Subtitle: fmt.Sprintf("%d PRs | mean %.2f | median %.2f | mean LOC %.0f | %.1f%% at or under target %.1f",
				summary.TotalPRs, summary.MeanScore, summary.MedianScore, summary.MeanLOC, summary.SmallPRRatio, target),
		}),
		charts.WithXAxisOpts(opts.XAxis{Type: "time"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "size_score"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	byRepo := make(map[string][]opts.ScatterData)
	for _, record := range records {
		byRepo[record.Repo] = append(byRepo[record.Repo], opts.ScatterData{
			Name:       fmt.Sprintf("#%d by %s", record.PRNumber, record.Author),
			Value:      []interface{}{record.MergedAt.Format("2006-01-02 15:04:05"), record.SizeScore},
			SymbolSize: 8,
		})
	}

	repos := make([]string, 0, len(byRepo))
	for repo := range byRepo {
		repos = append(repos, repo)
	}
	sort.Strings(repos)

	for i, repo := range repos {
		seriesOpts := []charts.SeriesOpts{}
		if i == 0 {
			seriesOpts = targetLine(target)
		}
		scatter.AddSeries(repo, byRepo[repo], seriesOpts...)
	}
	return scatter
}

// weeklyBar shows the mean score per week with the PR count as label.
func weeklyBar(weeks []WeekSummary, target float64) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Weekly Mean Score"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	labels := make([]string, 0, len(weeks))
	data := make([]opts.BarData, 0, len(weeks))
	for _, week := range weeks {
		labels = append(labels, week.Week)
		data = append(data, opts.BarData{
			Name:  fmt.Sprintf("%d PRs", week.PRCount),
			Value: week.MeanScore,
		})
	}

	bar.SetXAxis(labels)
	bar.AddSeries("mean score", data, targetLine(target)...)
	return bar
}

// repoBar compares mean scores across repositories.
func repoBar(summary *Summary) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Mean Score per Repository"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	labels := make([]string, 0, len(summary.Repos))
	data := make([]opts.BarData, 0, len(summary.Repos))
	for _, repo := range summary.Repos {
		labels = append(labels, repo.Repo)
		data = append(data, opts.BarData{
			Name:  fmt.Sprintf("%d PRs", repo.PRCount),
			Value: repo.MeanScore,
		})
	}

	bar.SetXAxis(labels)
	bar.AddSeries("mean score", data, targetLine(summary.TargetScore)...)
	return bar
}
