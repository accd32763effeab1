package digest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"rss_digest/internal/model"
)

func makeItems(n int) []model.DigestItem {
	items := make([]model.DigestItem, n)
	for i := range items {
		items[i] = model.DigestItem{
			EntryID: fmt.Sprintf("e%d", i+1),
			Title:   fmt.Sprintf("Promo %d", i+1),
			Link:    fmt.Sprintf("https://deals.example.com/%d", i+1),
			Source:  "deals.example.com",
		}
	}
	return items
}

func TestComposeEmpty(t *testing.T) {
	got := Compose("2026-05-10", nil, 20)
	want := "📬 <b>Promotions digest</b> (2026-05-10)\n\nNo relevant promotions found today."
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Compose() mismatch (-want +got):\n%s", diff)
	}
}

func TestComposeItems(t *testing.T) {
	items := []model.DigestItem{
		{Title: "Promo Miami", Link: "https://a.com/1", Source: "a.com"},
		{Title: "Promo <b>Boston</b> & more", Link: "https://b.com/2?x=1&y=2", Source: "b.com"},
	}

	got := Compose("2026-05-10", items, 20)
	want := "📬 <b>Promotions digest</b> (2026-05-10)\n" +
		"Total: 2\n" +
		"\n1) Promo Miami\nhttps://a.com/1\n<i>Source: a.com</i>\n" +
		"\n2) Promo Boston &amp; more\nhttps://b.com/2?x=1&amp;y=2\n<i>Source: b.com</i>\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Compose() mismatch (-want +got):\n%s", diff)
	}
}

func TestComposeTruncates(t *testing.T) {
	got := Compose("2026-05-10", makeItems(25), 20)

	if !strings.Contains(got, "Total: 25\n") {
		t.Errorf("header should report the full count:\n%s", got)
	}

	listed := 0
	for i := 1; i <= 25; i++ {
		if strings.Contains(got, fmt.Sprintf("\n%d) Promo %d\n", i, i)) {
			listed++
		}
	}
	if diff := cmp.Diff(20, listed); diff != "" {
		t.Errorf("listed items mismatch (-want +got):\n%s", diff)
	}
	if strings.Contains(got, "21) ") {
		t.Error("item 21 should not be listed")
	}
	if !strings.HasSuffix(got, "\n… and 5 more items not shown.") {
		t.Errorf("missing truncation notice:\n%s", got)
	}
}

func TestComposeNoTruncationAtLimit(t *testing.T) {
	got := Compose("2026-05-10", makeItems(20), 20)
	if strings.Contains(got, "more items not shown") {
		t.Error("no truncation notice expected when items fit")
	}
	if !strings.Contains(got, "\n20) Promo 20\n") {
		t.Error("last item missing")
	}
}

func TestOnlineNotice(t *testing.T) {
	got := OnlineNotice(Schedule{Location: utcMinus3, Hour: 20, Minute: 5}, 2)
	if !strings.Contains(got, "2 feeds") || !strings.Contains(got, "20:05") {
		t.Errorf("unexpected notice: %q", got)
	}
}
