package services

import (
	"fmt"
	"sync/atomic"
	"time"

	"tiempos/internal/cache"
	"tiempos/internal/core"
)

// CategoryView is one category card of the dashboard.
type CategoryView struct {
	Category core.Category
	Color    string
	Count    int // records in the filtered set
	Stats    core.Stats
	Previous core.Stats // same category, previous calendar month
}

// DashboardView is everything the dashboard page renders for a filter.
type DashboardView struct {
	Clinic      *core.Clinic
	Filter      core.Filter
	Records     []core.Record
	Categories  []CategoryView
	Overall     core.OverallTotals
	HasPrevious bool
	// PreviousLabel names the month used for the previous-month figures.
	PreviousLabel string
}

// Dashboard computes dashboard views and memoises them by snapshot version
// and filter.
type Dashboard struct {
	views  *cache.LRUCache[DashboardView]
	hits   atomic.Int64
	misses atomic.Int64
}

func NewDashboard(size int, ttl time.Duration) *Dashboard {
	return &Dashboard{views: cache.NewLRUCache[DashboardView](size, ttl)}
}

// Cache exposes the view cache for periodic cleanup.
func (d *Dashboard) Cache() *cache.LRUCache[DashboardView] {
	return d.views
}

func filterKey(f core.Filter) string {
	m, y := "-", "-"
	if f.Month != nil {
		m = fmt.Sprint(*f.Month)
	}
	if f.Year != nil {
		y = fmt.Sprint(*f.Year)
	}
	return m + "/" + y
}

// View returns the dashboard for the snapshot and filter.
func (d *Dashboard) View(snap Snapshot, f core.Filter) DashboardView {
	clinic := ""
	if snap.Active != nil {
		clinic = snap.Active.Code
	}
	key := fmt.Sprintf("%s|%s|%d|%s", snap.User.ID, clinic, snap.Version, filterKey(f))
	computed := false
	v := d.views.GetOrCreate(key, func() DashboardView {
		computed = true
		return BuildDashboard(snap, f)
	})
	if computed {
		d.misses.Add(1)
	} else {
		d.hits.Add(1)
	}
	return v
}

// Stats returns cache hits and misses.
func (d *Dashboard) Stats() (hits, misses int64) {
	return d.hits.Load(), d.misses.Load()
}

// BuildDashboard is the uncached computation behind View.
func BuildDashboard(snap Snapshot, f core.Filter) DashboardView {
	res := core.FilterRecords(snap.Records, f)
	stats := core.SummarizeAll(res.Records)

	v := DashboardView{
		Clinic:  snap.Active,
		Filter:  f,
		Records: res.Records,
		Overall: core.OverallStats(snap.Records),
	}

	var prev map[core.Category]core.Stats
	if f.Month != nil && f.Year != nil {
		prev = core.PreviousMonthStats(snap.Records, *f.Month, *f.Year)
		pm, py := core.PreviousMonth(*f.Month, *f.Year)
		v.HasPrevious = true
		v.PreviousLabel = fmt.Sprintf("%s %d", core.MonthName(pm), py)
	}

	for _, c := range core.Categories() {
		cv := CategoryView{
			Category: c,
			Color:    c.Color().Hex(),
			Count:    res.Counts[c],
			Stats:    stats[c],
		}
		if prev != nil {
			cv.Previous = prev[c]
		}
		v.Categories = append(v.Categories, cv)
	}
	return v
}
