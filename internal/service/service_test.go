package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"taskmaster/internal/models/task"
	"taskmaster/internal/repository"
	"taskmaster/internal/repository/kv/inmemory"
	"taskmaster/internal/service"
	"taskmaster/internal/view"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStore - мок хранилища ключ-значение
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Save(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockStore) Load(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockStore) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var _ service.Store = (*MockStore)(nil)

// fixedClock - часы, которые сдвигаются только вручную
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func newService(t *testing.T) (*service.TaskService, *inmemory.Storage, *fixedClock) {
	t.Helper()
	clock := &fixedClock{now: time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)}
	store := inmemory.NewStorage()
	svc := service.NewTaskService(store, clock.Now)
	require.NoError(t, svc.Load(context.Background()))
	return svc, store, clock
}

func storedTasks(t *testing.T, store *inmemory.Storage) []task.Task {
	t.Helper()
	data, err := store.Load(context.Background(), repository.KeyTasks)
	require.NoError(t, err)
	var tasks []task.Task
	require.NoError(t, json.Unmarshal(data, &tasks))
	return tasks
}

// TestTaskService_CreateTask тестирует создание задачи
func TestTaskService_CreateTask(t *testing.T) {
	ctx := context.Background()
	svc, store, clock := newService(t)

	created, err := svc.CreateTask(ctx, service.CreateTaskInput{Text: "  Report  "})
	require.NoError(t, err)

	assert.Equal(t, "Report", created.Text)
	assert.False(t, created.Completed)
	assert.Equal(t, task.PriorityMedium, created.Priority)
	assert.Equal(t, task.NoCategory, created.Category)
	assert.Equal(t, clock.now, created.CreatedAt)

	found, err := svc.GetTaskByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, *created, *found)

	// сохранено до возврата
	assert.Equal(t, []task.Task{*created}, storedTasks(t, store))
}

// TestTaskService_CreateTask_FrontInsertAndUniqueIDs проверяет порядок и уникальность id в одну миллисекунду
func TestTaskService_CreateTask_FrontInsertAndUniqueIDs(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	seen := map[int64]bool{}
	for i := 0; i < 5; i++ {
		created, err := svc.CreateTask(ctx, service.CreateTaskInput{Text: fmt.Sprintf("task %d", i)})
		require.NoError(t, err)
		assert.False(t, seen[created.ID])
		seen[created.ID] = true
	}

	tasks := svc.Tasks()
	require.Len(t, tasks, 5)
	assert.Equal(t, "task 4", tasks[0].Text)
	assert.Equal(t, "task 0", tasks[4].Text)
}

func TestTaskService_CreateTask_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input service.CreateTaskInput
		field string
	}{
		{"empty text", service.CreateTaskInput{Text: "   "}, "text"},
		{"bad priority", service.CreateTaskInput{Text: "a", Priority: "urgent"}, "priority"},
		{"bad date", service.CreateTaskInput{Text: "a", DueDate: "tomorrow"}, "dueDate"},
		{"bad time", service.CreateTaskInput{Text: "a", DueDate: "2026-10-20", DueTime: "7pm"}, "dueTime"},
		{"unknown category", service.CreateTaskInput{Text: "a", Category: "cat_404"}, "category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _ := newService(t)

			_, err := svc.CreateTask(context.Background(), tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, service.ErrValidation)

			var busErr *service.BusinessError
			require.True(t, errors.As(err, &busErr))
			assert.Equal(t, tt.field, busErr.Details["field"])

			assert.Empty(t, svc.Tasks())
			assert.Empty(t, store.Keys())
		})
	}
}

// TestTaskService_UpdateTask тестирует частичное обновление
func TestTaskService_UpdateTask(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	work, err := svc.CreateCategory(ctx, "Work", "")
	require.NoError(t, err)

	created, err := svc.CreateTask(ctx, service.CreateTaskInput{Text: "Report", Notes: "draft", DueDate: "2026-10-20"})
	require.NoError(t, err)

	updated, err := svc.UpdateTask(ctx, created.ID,
		task.WithText("Final report"),
		task.WithPriority(task.PriorityHigh),
		task.WithCategory(work.ID),
		task.WithDueTime("09:30"),
	)
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "Final report", updated.Text)
	assert.Equal(t, task.PriorityHigh, updated.Priority)
	assert.Equal(t, work.ID, updated.Category)
	assert.Equal(t, "09:30", updated.DueTime)
	// не переданные поля не меняются
	assert.Equal(t, "draft", updated.Notes)
	assert.Equal(t, task.Date("2026-10-20"), updated.DueDate)

	// снятие срока
	updated, err = svc.UpdateTask(ctx, created.ID, task.WithDueDate(""))
	require.NoError(t, err)
	assert.True(t, updated.DueDate.IsZero())
}

func TestTaskService_UpdateTask_Errors(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	_, err := svc.UpdateTask(ctx, 42, task.WithText("x"))
	assert.ErrorIs(t, err, service.ErrNotFound)

	created, err := svc.CreateTask(ctx, service.CreateTaskInput{Text: "Report"})
	require.NoError(t, err)

	_, err = svc.UpdateTask(ctx, created.ID, task.WithText(" "))
	assert.ErrorIs(t, err, service.ErrValidation)

	found, err := svc.GetTaskByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Report", found.Text)
}

func TestTaskService_ToggleAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService(t)

	created, err := svc.CreateTask(ctx, service.CreateTaskInput{Text: "Report"})
	require.NoError(t, err)

	toggled, err := svc.ToggleTask(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)
	assert.True(t, storedTasks(t, store)[0].Completed)

	toggled, err = svc.ToggleTask(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Completed)

	_, err = svc.ToggleTask(ctx, 999)
	assert.ErrorIs(t, err, service.ErrNotFound)

	require.NoError(t, svc.DeleteTask(ctx, created.ID))
	assert.Empty(t, svc.Tasks())
	assert.Empty(t, storedTasks(t, store))

	// повторное удаление - не ошибка
	assert.NoError(t, svc.DeleteTask(ctx, created.ID))
}

func seedTasks(t *testing.T, svc *service.TaskService, n int) []int64 {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := svc.CreateTask(context.Background(), service.CreateTaskInput{Text: fmt.Sprintf("t%d", i)})
		require.NoError(t, err)
	}
	return taskIDs(svc.Tasks())
}

func taskIDs(tasks []task.Task) []int64 {
	res := make([]int64, len(tasks))
	for i, t := range tasks {
		res[i] = t.ID
	}
	return res
}

func TestTaskService_MoveTask(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService(t)
	ids := seedTasks(t, svc, 4) // [a b c d]
	a, b, c, d := ids[0], ids[1], ids[2], ids[3]

	require.NoError(t, svc.MoveTask(ctx, a, 2))
	assert.Equal(t, []int64{b, c, a, d}, taskIDs(svc.Tasks()))

	require.NoError(t, svc.MoveTask(ctx, d, 0))
	assert.Equal(t, []int64{d, b, c, a}, taskIDs(svc.Tasks()))

	// индекс за пределами ограничивается
	require.NoError(t, svc.MoveTask(ctx, d, 100))
	assert.Equal(t, []int64{b, c, a, d}, taskIDs(svc.Tasks()))
	require.NoError(t, svc.MoveTask(ctx, a, -3))
	assert.Equal(t, []int64{a, b, c, d}, taskIDs(svc.Tasks()))

	assert.Equal(t, []int64{a, b, c, d}, taskIDs(storedTasks(t, store)))
	assert.ErrorIs(t, svc.MoveTask(ctx, 1, 0), service.ErrNotFound)
}

func TestTaskService_MoveTaskOnto(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	ids := seedTasks(t, svc, 4)
	a, b, c, d := ids[0], ids[1], ids[2], ids[3]

	require.NoError(t, svc.MoveTaskOnto(ctx, d, b))
	assert.Equal(t, []int64{a, d, b, c}, taskIDs(svc.Tasks()))

	require.NoError(t, svc.MoveTaskOnto(ctx, a, c))
	assert.Equal(t, []int64{d, b, c, a}, taskIDs(svc.Tasks()))

	require.NoError(t, svc.MoveTaskOnto(ctx, a, a))
	assert.ErrorIs(t, svc.MoveTaskOnto(ctx, a, 12345), service.ErrNotFound)
}

// TestTaskService_DeleteCategoryCascade - сценарий: Work, задача Report, удаление Work
func TestTaskService_DeleteCategoryCascade(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService(t)

	work, err := svc.CreateCategory(ctx, "Work", "#ff0000")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(work.ID, task.CategoryIDPrefix))

	report, err := svc.CreateTask(ctx, service.CreateTaskInput{Text: "Report", Category: work.ID})
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, service.CreateTaskInput{Text: "Other"})
	require.NoError(t, err)

	affected, err := svc.DeleteCategory(ctx, work.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, affected)

	found, err := svc.GetTaskByID(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, task.NoCategory, found.Category)

	assert.Empty(t, svc.Categories())
	for _, st := range storedTasks(t, store) {
		assert.NotEqual(t, work.ID, st.Category)
	}

	// отсутствующий id - без ошибки
	affected, err = svc.DeleteCategory(ctx, work.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, affected)
}

func TestTaskService_Categories(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	_, err := svc.CreateCategory(ctx, "  ", "#fff")
	assert.ErrorIs(t, err, service.ErrValidation)

	home, err := svc.CreateCategory(ctx, " Home ", "")
	require.NoError(t, err)
	assert.Equal(t, "Home", home.Name)
	assert.Equal(t, task.DefaultColor, home.Color)

	other, err := svc.CreateCategory(ctx, "Gym", "#123456")
	require.NoError(t, err)
	assert.NotEqual(t, home.ID, other.ID)

	updated, err := svc.UpdateCategory(ctx, home.ID, "House", "#abcdef")
	require.NoError(t, err)
	assert.Equal(t, "House", updated.Name)
	assert.Equal(t, "#abcdef", updated.Color)

	_, err = svc.UpdateCategory(ctx, home.ID, "", "#abcdef")
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = svc.UpdateCategory(ctx, "cat_missing", "X", "")
	assert.ErrorIs(t, err, service.ErrNotFound)

	got, err := svc.GetCategoryByID(ctx, home.ID)
	require.NoError(t, err)
	assert.Equal(t, "House", got.Name)
	assert.Len(t, svc.Categories(), 2)
}

// TestTaskService_LoadPersisted проверяет загрузку сохранённого состояния
func TestTaskService_LoadPersisted(t *testing.T) {
	ctx := context.Background()
	svc, store, clock := newService(t)

	work, err := svc.CreateCategory(ctx, "Work", "")
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, service.CreateTaskInput{Text: "Report", Category: work.ID})
	require.NoError(t, err)
	require.NoError(t, svc.SetDarkMode(ctx, true))

	reloaded := service.NewTaskService(store, clock.Now)
	require.NoError(t, reloaded.Load(ctx))

	assert.Equal(t, svc.Snapshot(), reloaded.Snapshot())
	assert.True(t, reloaded.DarkMode(ctx))

	// новые id не повторяют загруженные
	next, err := reloaded.CreateTask(ctx, service.CreateTaskInput{Text: "Next"})
	require.NoError(t, err)
	for _, existing := range svc.Tasks() {
		assert.NotEqual(t, existing.ID, next.ID)
	}
}

func TestTaskService_LoadErrors(t *testing.T) {
	ctx := context.Background()

	// битое значение в хранилище
	store := inmemory.NewStorage()
	require.NoError(t, store.Save(ctx, repository.KeyTasks, []byte("{oops")))
	svc := service.NewTaskService(store, nil)
	assert.ErrorIs(t, svc.Load(ctx), service.ErrParse)

	// ошибка хранилища
	mockStore := new(MockStore)
	mockStore.On("Load", mock.Anything, repository.KeyTasks).Return(nil, errors.New("disk failure"))
	svc = service.NewTaskService(mockStore, nil)
	err := svc.Load(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk failure")
	mockStore.AssertExpectations(t)
}

func TestTaskService_LoadDetachesOrphans(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewStorage()
	require.NoError(t, store.Save(ctx, repository.KeyTasks, []byte(`[{"id":1,"text":"a","category":"cat_gone"}]`)))

	svc := service.NewTaskService(store, nil)
	require.NoError(t, svc.Load(ctx))
	assert.Equal(t, task.NoCategory, svc.Tasks()[0].Category)
}

// TestTaskService_SaveFailureRollsBack проверяет откат при ошибке сохранения
func TestTaskService_SaveFailureRollsBack(t *testing.T) {
	ctx := context.Background()

	mockStore := new(MockStore)
	mockStore.On("Load", mock.Anything, mock.Anything).Return(nil, repository.ErrNotFound)
	mockStore.On("Save", mock.Anything, repository.KeyCategories, mock.Anything).Return(nil)
	mockStore.On("Save", mock.Anything, repository.KeyTasks, mock.Anything).Return(errors.New("quota exceeded"))

	svc := service.NewTaskService(mockStore, nil)
	require.NoError(t, svc.Load(ctx))

	_, err := svc.CreateTask(ctx, service.CreateTaskInput{Text: "Report"})
	require.Error(t, err)
	assert.Empty(t, svc.Tasks())

	_, err = svc.CreateCategory(ctx, "Work", "")
	require.NoError(t, err)
	assert.Len(t, svc.Categories(), 1)
}

// TestTaskService_JSONRoundTrip проверяет экспорт и импорт полного состояния
func TestTaskService_JSONRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := newService(t)

	work, err := svc.CreateCategory(ctx, "Work", "#ff0000")
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, service.CreateTaskInput{
		Text: "Report", Priority: task.PriorityHigh, DueDate: "2026-10-20", DueTime: "09:00",
		Category: work.ID, Notes: "q3",
	})
	require.NoError(t, err)
	clock.now = clock.now.Add(1500 * time.Millisecond)
	_, err = svc.CreateTask(ctx, service.CreateTaskInput{Text: `He said "hi"`})
	require.NoError(t, err)

	exported, err := svc.ExportJSON(ctx)
	require.NoError(t, err)

	other, _, _ := newService(t)
	res, err := other.ImportJSON(ctx, exported)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Tasks)
	assert.Equal(t, 1, res.Categories)
	assert.Equal(t, 0, res.Detached)

	assert.Equal(t, svc.Tasks(), other.Tasks())
	assert.Equal(t, svc.Categories(), other.Categories())
}

func TestTaskService_ImportJSON(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	work, err := svc.CreateCategory(ctx, "Work", "")
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, service.CreateTaskInput{Text: "Report", Category: work.ID})
	require.NoError(t, err)
	before := svc.Snapshot()

	// битый документ не меняет состояние
	_, err = svc.ImportJSON(ctx, []byte(`{"tasks": [}`))
	assert.ErrorIs(t, err, service.ErrParse)
	assert.Equal(t, before, svc.Snapshot())

	// только категории: задачи остаются, но ссылки на исчезнувшие категории сбрасываются
	res, err := svc.ImportJSON(ctx, []byte(`{"categories": [{"id": "cat_1", "name": "Home", "color": "#fff"}]}`))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Detached)
	assert.Equal(t, "Report", svc.Tasks()[0].Text)
	assert.Equal(t, task.NoCategory, svc.Tasks()[0].Category)
	assert.Equal(t, "Home", svc.Categories()[0].Name)

	// только задачи
	_, err = svc.ImportJSON(ctx, []byte(`{"tasks": []}`))
	require.NoError(t, err)
	assert.Empty(t, svc.Tasks())
	assert.Len(t, svc.Categories(), 1)
}

func TestTaskService_CSV(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	work, err := svc.CreateCategory(ctx, "Work", "")
	require.NoError(t, err)
	existing, err := svc.CreateTask(ctx, service.CreateTaskInput{Text: "Existing", Category: work.ID})
	require.NoError(t, err)

	exported := string(svc.ExportCSV(ctx))
	assert.Contains(t, exported, `"Existing","Medium","Pending","","","Work",""`)

	input := "Task,Priority,Status,Due Date,Time,Project,Notes\n" +
		`"Imported one","high","Completed","2026-10-20","","Work","n"` + "\n" +
		`"bad"` + "\n" +
		`"Imported two","low","Pending",""` + "\n"

	res, err := svc.ImportCSV(ctx, []byte(input))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Tasks)
	assert.Equal(t, 1, res.Skipped)

	tasks := svc.Tasks()
	require.Len(t, tasks, 3)
	assert.Equal(t, existing.ID, tasks[0].ID)

	imported := tasks[1]
	assert.Equal(t, "Imported one", imported.Text)
	assert.True(t, imported.Completed)
	assert.Equal(t, task.PriorityHigh, imported.Priority)
	// название проекта не сопоставляется с категорией
	assert.Equal(t, task.NoCategory, imported.Category)
	assert.NotEqual(t, existing.ID, imported.ID)
	assert.NotEqual(t, tasks[1].ID, tasks[2].ID)

	// пустой файл ничего не меняет
	res, err = svc.ImportCSV(ctx, []byte("Task,Priority\n\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Tasks)
	assert.Len(t, svc.Tasks(), 3)
}

func TestTaskService_RenderTable(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	_, err := svc.CreateTask(ctx, service.CreateTaskInput{Text: "Report"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.RenderTable(ctx, &buf))
	assert.Contains(t, buf.String(), "Report")
	assert.Contains(t, buf.String(), "No Project")
}

func TestTaskService_View(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t) // сегодня 2026-10-14

	seed := []service.CreateTaskInput{
		{Text: "no date"},
		{Text: "tomorrow", DueDate: "2026-10-15"},
		{Text: "yesterday", DueDate: "2026-10-13"},
	}
	for _, in := range seed {
		_, err := svc.CreateTask(ctx, in)
		require.NoError(t, err)
	}
	done, err := svc.CreateTask(ctx, service.CreateTaskInput{Text: "done"})
	require.NoError(t, err)
	_, err = svc.ToggleTask(ctx, done.ID)
	require.NoError(t, err)

	res, err := svc.View(ctx, view.Criteria{Sort: view.SortAlphabetical}, 1, 10)
	require.NoError(t, err)

	var texts []string
	for _, tk := range res.Page.Items {
		texts = append(texts, tk.Text)
	}
	assert.Equal(t, []string{"yesterday", "tomorrow", "no date", "done"}, texts)
	assert.Equal(t, 4, res.Stats.Total)
	assert.Equal(t, 1, res.Stats.Completed)
	assert.Len(t, res.Links, 1)

	_, err = svc.View(ctx, view.Criteria{}, 3, 2)
	var busErr *service.BusinessError
	require.True(t, errors.As(err, &busErr))
	assert.Equal(t, service.CodePageOutside, busErr.Code)
	assert.Equal(t, 2, busErr.Details["total_pages"])

	_, err = svc.View(ctx, view.Criteria{}, 1, 0)
	assert.ErrorIs(t, err, service.ErrValidation)

	assert.Equal(t, res.Stats, svc.Stats(ctx))
}

func TestTaskService_DarkMode(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService(t)

	assert.False(t, svc.DarkMode(ctx))

	enabled, err := svc.ToggleDarkMode(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)

	value, err := store.Load(ctx, repository.KeyDarkMode)
	require.NoError(t, err)
	assert.Equal(t, "true", string(value))

	require.NoError(t, svc.SetDarkMode(ctx, false))
	assert.False(t, svc.DarkMode(ctx))
}

func TestTaskService_HealthCheck(t *testing.T) {
	tests := []struct {
		name        string
		setupMock   func(*MockStore)
		expectError bool
	}{
		{
			name: "success - health check passes",
			setupMock: func(m *MockStore) {
				m.On("HealthCheck", mock.Anything).Return(nil)
			},
		},
		{
			name: "error - health check fails",
			setupMock: func(m *MockStore) {
				m.On("HealthCheck", mock.Anything).Return(errors.New("db connection failed"))
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockStore := new(MockStore)
			tt.setupMock(mockStore)

			svc := service.NewTaskService(mockStore, nil)
			err := svc.HealthCheck(context.Background())

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			mockStore.AssertExpectations(t)
		})
	}
}

func TestIDGenerator(t *testing.T) {
	clock := &fixedClock{now: time.UnixMilli(1000)}
	gen := service.NewIDGenerator(clock.Now)

	assert.Equal(t, int64(1000), gen.Next())
	assert.Equal(t, int64(1001), gen.Next())

	clock.now = time.UnixMilli(5000)
	assert.Equal(t, int64(5000), gen.Next())

	gen.Observe(9000)
	assert.Equal(t, int64(9001), gen.Next())

	gen.ObserveCategory("cat_12000")
	assert.Equal(t, "cat_12001", gen.NextCategoryID())

	gen.ObserveCategory("custom")
	assert.Equal(t, int64(12002), gen.Next())
}
