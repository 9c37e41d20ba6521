package storage

import (
	"errors"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yourusername/todo-api/internal/model"
)

// setupTestDB creates an in-memory SQLite database for testing. A single
// connection keeps the in-memory schema and the foreign_keys pragma alive
// for the whole test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()
	user := &model.User{
		FirstName: "Test",
		Username:  username,
		Password:  "not-a-real-digest",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func strPtr(s string) *string { return &s }

func TestUserRepositoryUniqueUsername(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	first := &model.User{FirstName: "A", Username: "farida", Password: "x"}
	if err := repo.Create(first); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	second := &model.User{FirstName: "B", Username: "farida", Password: "y"}
	if err := repo.Create(second); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestUserRepositoryFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	user := createTestUser(t, db, "owner")

	byID, err := repo.FindByID(user.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if byID.Username != "owner" {
		t.Errorf("expected username %q, got %q", "owner", byID.Username)
	}

	byName, err := repo.FindByUsername("owner")
	if err != nil {
		t.Fatalf("FindByUsername() error = %v", err)
	}
	if byName.ID != user.ID {
		t.Errorf("expected id %d, got %d", user.ID, byName.ID)
	}

	if _, err := repo.FindByID(9999); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := repo.FindByUsername("nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestDeleteUserCascadesTasks(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	tasks := NewTaskRepository(db)
	user := createTestUser(t, db, "doomed")

	if err := tasks.Create(&model.Task{Title: "t1", Status: model.StatusNew, UserID: user.ID}); err != nil {
		t.Fatalf("Create task error = %v", err)
	}
	if err := tasks.Create(&model.Task{Title: "t2", Status: model.StatusNew, UserID: user.ID}); err != nil {
		t.Fatalf("Create task error = %v", err)
	}

	if err := users.Delete(user.ID); err != nil {
		t.Fatalf("Delete user error = %v", err)
	}

	var count int64
	if err := db.Model(&model.Task{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		t.Fatalf("count error = %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 tasks after cascade, got %d", count)
	}
}

func TestTaskRepositoryCreateInvalidOwner(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)

	err := repo.Create(&model.Task{Title: "orphan", Status: model.StatusNew, UserID: 4242})
	if !errors.Is(err, ErrInvalidOwner) {
		t.Fatalf("expected ErrInvalidOwner, got %v", err)
	}
}

func TestTaskRepositoryCRUD(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)
	user := createTestUser(t, db, "owner")

	task := &model.Task{Title: "Buy milk", Status: model.StatusNew, UserID: user.ID}
	if err := repo.Create(task); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if task.ID == 0 {
		t.Fatal("expected autoincrement id to be assigned")
	}

	found, err := repo.FindByID(task.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found.Title != "Buy milk" {
		t.Errorf("expected title %q, got %q", "Buy milk", found.Title)
	}

	found.Status = model.StatusCompleted
	if err := repo.Save(found); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	again, err := repo.FindByID(task.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if again.Status != model.StatusCompleted {
		t.Errorf("expected status Completed, got %q", again.Status)
	}

	if err := repo.Delete(task.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.FindByID(task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound after delete, got %v", err)
	}
	if err := repo.Delete(task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound on second delete, got %v", err)
	}
}

func TestUpdateFieldsClearsDescription(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTaskRepository(db)
	user := createTestUser(t, db, "owner")

	task := &model.Task{
		Title:       "With description",
		Description: strPtr("details"),
		Status:      model.StatusNew,
		UserID:      user.ID,
	}
	if err := repo.Create(task); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := repo.UpdateFields(task.ID, map[string]any{"description": nil})
	if err != nil {
		t.Fatalf("UpdateFields() error = %v", err)
	}
	if updated.Description != nil {
		t.Errorf("expected description cleared, got %q", *updated.Description)
	}
	if updated.Title != "With description" {
		t.Errorf("title must be untouched, got %q", updated.Title)
	}
}

func seedListFixture(t *testing.T, db *gorm.DB) (owner, other *model.User) {
	t.Helper()
	owner = createTestUser(t, db, "owner")
	other = createTestUser(t, db, "other")

	repo := NewTaskRepository(db)
	fixtures := []model.Task{
		{Title: "Buy milk", Description: strPtr("2L milk"), Status: model.StatusNew, UserID: owner.ID},
		{Title: "Milkshake recipe", Description: strPtr("almond milk"), Status: model.StatusInProgress, UserID: owner.ID},
		{Title: "Fix login bug", Status: model.StatusInProgress, UserID: owner.ID},
		{Title: "Make tea", Status: model.StatusCompleted, UserID: other.ID},
		{Title: "Water plants", Description: strPtr("MILK the chore list"), Status: model.StatusCompleted, UserID: other.ID},
	}
	for i := range fixtures {
		if err := repo.Create(&fixtures[i]); err != nil {
			t.Fatalf("failed to seed task %d: %v", i, err)
		}
	}
	return owner, other
}

func TestListFilterByStatus(t *testing.T) {
	db := setupTestDB(t)
	seedListFixture(t, db)
	repo := NewTaskRepository(db)

	status := model.StatusInProgress
	items, total, err := repo.List(ListFilter{Status: &status, Limit: 50})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("expected 2 in-progress tasks, got total=%d len=%d", total, len(items))
	}
	for _, item := range items {
		if item.Status != model.StatusInProgress {
			t.Errorf("unexpected status %q", item.Status)
		}
	}
}

func TestListSearchMatchesTitleOrDescription(t *testing.T) {
	db := setupTestDB(t)
	seedListFixture(t, db)
	repo := NewTaskRepository(db)

	items, total, err := repo.List(ListFilter{Search: "milk", Limit: 50})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	// "Buy milk" (title), "Milkshake recipe" (title), "Water plants"
	// (description, different case) all match.
	if total != 3 {
		t.Fatalf("expected 3 matches, got %d", total)
	}
	for _, item := range items {
		title := item.Title
		desc := ""
		if item.Description != nil {
			desc = *item.Description
		}
		if !strings.Contains(strings.ToLower(title+" "+desc), "milk") {
			t.Errorf("item %q/%q does not match search", title, desc)
		}
	}
}

func TestListScopedToOwner(t *testing.T) {
	db := setupTestDB(t)
	owner, _ := seedListFixture(t, db)
	repo := NewTaskRepository(db)

	items, total, err := repo.List(ListFilter{OwnerID: &owner.ID, Limit: 50})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 3 {
		t.Fatalf("expected 3 owned tasks, got %d", total)
	}
	for _, item := range items {
		if item.UserID != owner.ID {
			t.Errorf("task %d belongs to user %d, not the owner", item.ID, item.UserID)
		}
	}
}

func TestListSortWhitelistFallsBackToID(t *testing.T) {
	db := setupTestDB(t)
	seedListFixture(t, db)
	repo := NewTaskRepository(db)

	// A hostile sort column must not reach the SQL string; the query
	// degrades to the default id ordering instead of failing.
	items, _, err := repo.List(ListFilter{SortBy: "id; DROP TABLE tasks--", Limit: 50})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	for i := 1; i < len(items); i++ {
		if items[i-1].ID < items[i].ID {
			t.Fatalf("expected id DESC ordering, got %d before %d", items[i-1].ID, items[i].ID)
		}
	}

	var count int64
	if err := db.Model(&model.Task{}).Count(&count).Error; err != nil {
		t.Fatalf("tasks table gone: %v", err)
	}
}

func TestListSortByTitleAsc(t *testing.T) {
	db := setupTestDB(t)
	seedListFixture(t, db)
	repo := NewTaskRepository(db)

	items, _, err := repo.List(ListFilter{SortBy: "title", SortDir: "asc", Limit: 50})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	for i := 1; i < len(items); i++ {
		if items[i-1].Title > items[i].Title {
			t.Fatalf("titles out of order: %q before %q", items[i-1].Title, items[i].Title)
		}
	}
}

func TestListStatusSortTieBreaksByIDDesc(t *testing.T) {
	db := setupTestDB(t)
	seedListFixture(t, db)
	repo := NewTaskRepository(db)

	items, _, err := repo.List(ListFilter{SortBy: "status", SortDir: "asc", Limit: 50})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	for i := 1; i < len(items); i++ {
		if items[i-1].Status == items[i].Status && items[i-1].ID < items[i].ID {
			t.Fatalf("equal statuses must tie-break id DESC: %d before %d",
				items[i-1].ID, items[i].ID)
		}
	}
}

func TestListPagination(t *testing.T) {
	db := setupTestDB(t)
	seedListFixture(t, db)
	repo := NewTaskRepository(db)

	seen := make(map[uint]bool)
	var total int64
	for page := 1; ; page++ {
		items, pageTotal, err := repo.List(ListFilter{Offset: (page - 1) * 2, Limit: 2})
		if err != nil {
			t.Fatalf("List() page %d error = %v", page, err)
		}
		total = pageTotal
		if len(items) == 0 {
			break
		}
		for _, item := range items {
			if seen[item.ID] {
				t.Fatalf("task %d appeared on two pages", item.ID)
			}
			seen[item.ID] = true
		}
	}
	if int64(len(seen)) != total {
		t.Fatalf("pages covered %d distinct tasks, total reports %d", len(seen), total)
	}
}
