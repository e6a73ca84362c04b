package review

import (
	"sync"
	"testing"
	"time"

	"github.com/vadim/ghostwrite/internal/domain/post/entity"
)

func TestBoardReplaceAndApply(t *testing.T) {
	b := NewBoard()
	if b.Loaded() {
		t.Fatal("new board should not be loaded")
	}

	b.Replace([]entity.Post{
		{ID: "1", Topic: "A", Status: entity.PostStatusPending},
		{ID: "2", Topic: "B", Status: entity.PostStatusPending},
	})

	if !b.Loaded() {
		t.Error("board should be loaded after Replace")
	}
	if got := len(b.Campaigns()); got != 2 {
		t.Fatalf("expected 2 campaigns, got %d", got)
	}

	ok := b.Apply("1", func(p *entity.Post) { p.Status = entity.PostStatusApproved })
	if !ok {
		t.Fatal("Apply should find post 1")
	}

	c, ok := b.Campaign("A")
	if !ok {
		t.Fatal("campaign A missing")
	}
	if c.Posts[0].Status != entity.PostStatusApproved {
		t.Errorf("campaign was not regrouped after Apply: %s", c.Posts[0].Status)
	}

	if b.Apply("missing", func(p *entity.Post) {}) {
		t.Error("Apply should report a missing post")
	}
}

func TestBoardReturnsCopies(t *testing.T) {
	b := NewBoard()
	b.Replace([]entity.Post{{ID: "1", Content: "original"}})

	snap := b.Snapshot()
	snap[0].Content = "changed"

	campaigns := b.Campaigns()
	campaigns[0].Posts[0].Content = "changed"

	p, _ := b.Post("1")
	if p.Content != "original" {
		t.Errorf("board state leaked through a returned slice: %q", p.Content)
	}
}

func TestBoardsPerUser(t *testing.T) {
	r := NewBoards(0, 0)
	if r.For("a") != r.For("a") {
		t.Error("For should return the same board for the same user")
	}
	if r.For("a") == r.For("b") {
		t.Error("users should not share boards")
	}
}

func TestBoardsEvictLeastRecentlyUsed(t *testing.T) {
	r := NewBoards(2, time.Hour)

	a := r.For("a")
	b := r.For("b")
	r.For("a")
	r.For("c")

	if r.Len() != 2 {
		t.Fatalf("len = %d, want 2", r.Len())
	}
	if r.For("a") != a {
		t.Error("recently used board should be kept")
	}
	if r.For("b") == b {
		t.Error("least recently used board should be dropped")
	}
}

func TestBoardsExpireWhenIdle(t *testing.T) {
	r := NewBoards(10, 20*time.Millisecond)

	a := r.For("a")
	a.Replace([]entity.Post{{ID: "1", Topic: "A"}})
	time.Sleep(60 * time.Millisecond)

	fresh := r.For("a")
	if fresh == a {
		t.Fatal("idle board should have expired")
	}
	if fresh.Loaded() {
		t.Error("replacement board should start unloaded")
	}
}

func TestInFlight(t *testing.T) {
	f := NewInFlight()

	if !f.TryAcquire("1") {
		t.Fatal("first acquire should succeed")
	}
	if f.TryAcquire("1") {
		t.Error("second acquire on the same post should fail")
	}
	if !f.TryAcquire("2") {
		t.Error("a different post should not be blocked")
	}
	if !f.Busy("1") {
		t.Error("post 1 should be busy")
	}

	f.Release("1")
	if f.Busy("1") {
		t.Error("post 1 should be released")
	}
}

func TestInFlightConcurrentAcquire(t *testing.T) {
	f := NewInFlight()

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if f.TryAcquire("same") {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("expected exactly one winner, got %d", wins)
	}
}

func campaignFixture() entity.Campaign {
	return entity.Campaign{
		Topic: "Coffee",
		Posts: []entity.Post{
			{ID: "ig", Platform: entity.PlatformInstagram, Status: entity.PostStatusPending, Content: "latte art"},
			{ID: "fb", Platform: entity.PlatformFacebook, Status: entity.PostStatusApproved, Content: "new beans"},
		},
	}
}

func TestCampaignViewDefaultTab(t *testing.T) {
	v := NewCampaignView(ViewInput{Campaign: campaignFixture()})

	if v.ActiveTab != entity.PlatformInstagram {
		t.Errorf("expected first available platform, got %q", v.ActiveTab)
	}
	if v.ActivePost == nil || v.ActivePost.ID != "ig" {
		t.Fatalf("unexpected active post %+v", v.ActivePost)
	}
	if len(v.Tabs) != 4 {
		t.Errorf("expected 4 tabs, got %d", len(v.Tabs))
	}
	for _, tab := range v.Tabs {
		wantDraft := tab.Platform == entity.PlatformInstagram || tab.Platform == entity.PlatformFacebook
		if tab.HasDraft != wantDraft {
			t.Errorf("tab %s HasDraft = %v", tab.Platform, tab.HasDraft)
		}
	}
}

func TestCampaignViewFallbackTab(t *testing.T) {
	v := NewCampaignView(ViewInput{Campaign: entity.Campaign{Posts: []entity.Post{{ID: "1", Platform: "mastodon"}}}})

	if v.ActiveTab != entity.PlatformLinkedIn {
		t.Errorf("expected linkedin fallback, got %q", v.ActiveTab)
	}
	if v.ActivePost != nil {
		t.Error("no active post expected for an empty tab")
	}
	if v.CanApprove || v.CanPublish || v.CanSave {
		t.Error("controls must be disabled without an active post")
	}
}

func TestCampaignViewControls(t *testing.T) {
	v := NewCampaignView(ViewInput{Campaign: campaignFixture(), Tab: entity.PlatformFacebook})

	if v.CanApprove {
		t.Error("approve must be disabled for an approved post")
	}
	if !v.CanReject || !v.CanPublish {
		t.Error("reject and publish should be enabled")
	}

	busy := NewCampaignView(ViewInput{
		Campaign: campaignFixture(),
		Tab:      entity.PlatformFacebook,
		Busy:     func(id string) bool { return id == "fb" },
	})
	if busy.CanReject || busy.CanPublish {
		t.Error("controls must be disabled while the post is in flight")
	}
}

func TestCampaignViewEditBuffer(t *testing.T) {
	draft := "edited text"
	v := NewCampaignView(ViewInput{Campaign: campaignFixture(), Editing: true, Draft: &draft})
	if v.Draft != draft || !v.CanSave {
		t.Errorf("expected edit buffer to be used, got %q (save=%v)", v.Draft, v.CanSave)
	}

	blank := "   "
	v = NewCampaignView(ViewInput{Campaign: campaignFixture(), Editing: true, Draft: &blank})
	if v.CanSave {
		t.Error("save must be disabled for a blank draft")
	}

	v = NewCampaignView(ViewInput{Campaign: campaignFixture(), Editing: false, Draft: &draft})
	if v.Draft != "latte art" {
		t.Errorf("cancelled edit should show committed content, got %q", v.Draft)
	}

	v = NewCampaignView(ViewInput{Campaign: campaignFixture(), Editing: true})
	if v.Draft != "latte art" {
		t.Errorf("a new edit should start from committed content, got %q", v.Draft)
	}
}
