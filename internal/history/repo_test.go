package history

import (
	"context"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/buybuddy-ai/buybuddy/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(gormsqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestSaveAndListConversations(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	for i, msg := range []string{"first", "second", "third"} {
		err := repo.SaveConversation(ctx, &Conversation{
			SessionID:         "01SESSION00000000000000000",
			UserMessage:       msg,
			AssistantResponse: "ok",
		})
		if err != nil {
			t.Fatalf("save conversation %d: %v", i, err)
		}
	}
	// noise in another session
	if err := repo.SaveConversation(ctx, &Conversation{SessionID: "other", UserMessage: "x"}); err != nil {
		t.Fatalf("save conversation: %v", err)
	}

	convs, err := repo.ListConversations(ctx, "01SESSION00000000000000000", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(convs) != 3 {
		t.Fatalf("expected 3 conversations, got %d", len(convs))
	}
	if convs[0].UserMessage != "third" {
		t.Fatalf("expected newest first, got %q", convs[0].UserMessage)
	}

	limited, err := repo.ListConversations(ctx, "01SESSION00000000000000000", 2)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(limited))
	}
}

func TestSaveAndListSearches(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	if err := repo.SaveSearch(ctx, &Search{SessionID: "s1", QueryText: "laptop", NumResults: 5}); err != nil {
		t.Fatalf("save search: %v", err)
	}
	if err := repo.SaveSearch(ctx, &Search{SessionID: "s2", QueryText: "shoes", NumResults: 3}); err != nil {
		t.Fatalf("save search: %v", err)
	}

	all, err := repo.ListSearches(ctx, "", 0)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 searches, got %d", len(all))
	}

	one, err := repo.ListSearches(ctx, "s1", 0)
	if err != nil {
		t.Fatalf("list s1: %v", err)
	}
	if len(one) != 1 || one[0].QueryText != "laptop" {
		t.Fatalf("unexpected searches: %+v", one)
	}
}

func TestCacheProducts_UpsertsByLink(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	first := []models.Product{
		{Name: "Laptop", Price: "€500", Link: "https://shop.example/1", Platform: "Amazon"},
		{Name: "Mouse", Price: "€20", Link: "https://shop.example/2", Platform: "eBay"},
	}
	if err := repo.CacheProducts(ctx, first, "laptop"); err != nil {
		t.Fatalf("cache: %v", err)
	}

	// same link with a new price must refresh, not duplicate
	second := []models.Product{
		{Name: "Laptop", Price: "€450", Link: "https://shop.example/1", Platform: "Amazon"},
	}
	if err := repo.CacheProducts(ctx, second, "laptop deal"); err != nil {
		t.Fatalf("re-cache: %v", err)
	}

	var count int64
	if err := repo.db.Model(&CachedProduct{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 cached rows, got %d", count)
	}

	var row CachedProduct
	if err := repo.db.Where("link = ?", "https://shop.example/1").First(&row).Error; err != nil {
		t.Fatalf("load row: %v", err)
	}
	if row.Price != "€450" || row.SearchQuery != "laptop deal" {
		t.Fatalf("row not refreshed: %+v", row)
	}
}

func TestCacheProducts_SkipsEmptyLinks(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	err := repo.CacheProducts(ctx, []models.Product{{Name: "NoLink"}}, "q")
	if err != nil {
		t.Fatalf("cache: %v", err)
	}

	var count int64
	if err := repo.db.Model(&CachedProduct{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no rows, got %d", count)
	}
}

func TestFindCachedProducts_MatchesQuerySubstring(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	products := []models.Product{
		{Name: "Gaming Laptop", Price: "€900", Link: "https://shop.example/1"},
	}
	if err := repo.CacheProducts(ctx, products, "gaming laptop under 1000"); err != nil {
		t.Fatalf("cache: %v", err)
	}

	found, err := repo.FindCachedProducts(ctx, "gaming laptop", 0)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(found) != 1 || found[0].Name != "Gaming Laptop" {
		t.Fatalf("unexpected result: %+v", found)
	}

	none, err := repo.FindCachedProducts(ctx, "sneakers", 0)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no matches, got %+v", none)
	}
}

func TestEnvelopeApply(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	conv := Envelope{Kind: KindConversation, Conversation: &ConversationRecord{
		SessionID:     "s1",
		UserMessage:   "buy a laptop",
		AssistantText: "here you go",
	}}
	if err := conv.Apply(ctx, repo); err != nil {
		t.Fatalf("apply conversation: %v", err)
	}

	srch := Envelope{Kind: KindSearch, Search: &SearchRecord{
		SessionID:   "s1",
		QueryText:   "laptop",
		ResultCount: 4,
	}}
	if err := srch.Apply(ctx, repo); err != nil {
		t.Fatalf("apply search: %v", err)
	}

	prods := Envelope{Kind: KindProducts, Products: &ProductsRecord{
		Products:  []models.Product{{Name: "L", Link: "https://shop.example/1"}},
		QueryText: "laptop",
	}}
	if err := prods.Apply(ctx, repo); err != nil {
		t.Fatalf("apply products: %v", err)
	}

	if err := (Envelope{Kind: "bogus"}).Apply(ctx, repo); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
	if err := (Envelope{Kind: KindSearch}).Apply(ctx, repo); err == nil {
		t.Fatalf("expected error for missing payload")
	}

	convs, err := repo.ListConversations(ctx, "s1", 0)
	if err != nil || len(convs) != 1 {
		t.Fatalf("expected 1 conversation, got %d (err=%v)", len(convs), err)
	}
	searches, err := repo.ListSearches(ctx, "s1", 0)
	if err != nil || len(searches) != 1 {
		t.Fatalf("expected 1 search, got %d (err=%v)", len(searches), err)
	}
}
