package book

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedBooks() []Book {
	return []Book{
		{ID: 1, Author: "J.R.R. Tolkien", Name: "The Hobbit", Year: 1937},
		{ID: 4, Author: "George Orwell", Name: "Animal Farm", Year: 1945},
		{ID: 2, Author: "J.R.R. Tolkien", Name: "The Silmarillion", Year: 1977},
	}
}

func openService(t *testing.T, ctrl *gomock.Controller, books []Book) (*Service, *MockStore) {
	t.Helper()
	mockStore := NewMockStore(ctrl)
	mockStore.EXPECT().Load(gomock.Any()).Return(books, nil)

	service := NewService(mockStore)
	require.NoError(t, service.Open(context.Background()))
	return service, mockStore
}

func TestService_Open(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("success", func(t *testing.T) {
		service, _ := openService(t, ctrl, seedBooks())
		assert.Equal(t, 3, service.Count())
	})

	t.Run("store error", func(t *testing.T) {
		mockStore := NewMockStore(ctrl)
		loadErr := &StoreError{Op: "load", Path: "data.json", Err: ErrMalformedStore}
		mockStore.EXPECT().Load(gomock.Any()).Return(nil, loadErr)

		service := NewService(mockStore)
		err := service.Open(context.Background())

		assert.ErrorIs(t, err, ErrMalformedStore)
		assert.Equal(t, 0, service.Count())
	})
}

func TestService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	t.Run("first id is one", func(t *testing.T) {
		service, mockStore := openService(t, ctrl, nil)
		want := Book{ID: 1, Author: "George Orwell", Name: "1984", Year: 1949}
		mockStore.EXPECT().Save(gomock.Any(), []Book{want}).Return(nil)

		got, err := service.Create(ctx, Input{Author: "George Orwell", Name: "1984", Year: 1949})

		assert.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("id is max plus one", func(t *testing.T) {
		service, mockStore := openService(t, ctrl, seedBooks())
		mockStore.EXPECT().Save(gomock.Any(), gomock.Len(4)).Return(nil)

		got, err := service.Create(ctx, Input{Author: "Frank Herbert", Name: "Dune", Year: 1965})

		assert.NoError(t, err)
		assert.Equal(t, 5, got.ID)
		books, _ := service.List(ctx)
		assert.Equal(t, got, books[len(books)-1])
	})

	t.Run("save failure leaves catalog unchanged", func(t *testing.T) {
		service, mockStore := openService(t, ctrl, seedBooks())
		saveErr := &StoreError{Op: "save", Path: "data.json", Err: errors.New("disk full")}
		mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).Return(saveErr)

		_, err := service.Create(ctx, Input{Author: "Frank Herbert", Name: "Dune", Year: 1965})

		var storeErr *StoreError
		assert.ErrorAs(t, err, &storeErr)
		assert.Equal(t, 3, service.Count())
		_, err = service.Get(ctx, 5)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestService_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	service, _ := openService(t, ctrl, seedBooks())
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		got, err := service.Get(ctx, 4)
		assert.NoError(t, err)
		assert.Equal(t, "Animal Farm", got.Name)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := service.Get(ctx, 3)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestService_GetByName(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	books := append(seedBooks(), Book{ID: 7, Author: "Someone Else", Name: "the hobbit", Year: 2001})
	service, _ := openService(t, ctrl, books)
	ctx := context.Background()

	t.Run("case insensitive first match", func(t *testing.T) {
		got, err := service.GetByName(ctx, "THE HOBBIT")
		assert.NoError(t, err)
		assert.Equal(t, 1, got.ID)
	})

	t.Run("substring is not enough", func(t *testing.T) {
		_, err := service.GetByName(ctx, "Hobbit")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestService_Search(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	service, _ := openService(t, ctrl, seedBooks())
	ctx := context.Background()

	tests := []struct {
		name  string
		query SearchQuery
		want  []int
	}{
		{"no filters keeps storage order", SearchQuery{}, []int{1, 4, 2}},
		{"author substring", SearchQuery{Author: "Tolk"}, []int{1, 2}},
		{"name substring", SearchQuery{Name: "FARM"}, []int{4}},
		{"both filters", SearchQuery{Author: "tolkien", Name: "silm"}, []int{2}},
		{"both filters no overlap", SearchQuery{Author: "orwell", Name: "hobbit"}, []int{}},
		{"no match", SearchQuery{Author: "Herbert"}, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			books, err := service.Search(ctx, tt.query)
			require.NoError(t, err)
			require.NotNil(t, books)

			ids := make([]int, 0, len(books))
			for _, b := range books {
				ids = append(ids, b.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	t.Run("list by author", func(t *testing.T) {
		books, err := service.ListByAuthor(ctx, "ORWELL")
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, 4, books[0].ID)
	})
}

func TestService_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		service, mockStore := openService(t, ctrl, seedBooks())
		want := Book{ID: 4, Author: "Eric Blair", Name: "Animal Farm: A Fairy Story", Year: 1946}
		saved := seedBooks()
		saved[1] = want
		mockStore.EXPECT().Save(gomock.Any(), saved).Return(nil)

		got, err := service.Update(ctx, 4, Input{Author: "Eric Blair", Name: "Animal Farm: A Fairy Story", Year: 1946})

		assert.NoError(t, err)
		assert.Equal(t, want, got)
		reloaded, _ := service.Get(ctx, 4)
		assert.Equal(t, want, reloaded)
	})

	t.Run("not found", func(t *testing.T) {
		service, _ := openService(t, ctrl, seedBooks())

		_, err := service.Update(ctx, 99, Input{Author: "a", Name: "b", Year: 1})

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("save failure keeps old values", func(t *testing.T) {
		service, mockStore := openService(t, ctrl, seedBooks())
		mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).Return(&StoreError{Op: "save", Err: errors.New("read-only")})

		_, err := service.Update(ctx, 4, Input{Author: "a", Name: "b", Year: 1})

		assert.Error(t, err)
		got, _ := service.Get(ctx, 4)
		assert.Equal(t, "George Orwell", got.Author)
	})
}

func TestService_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		service, mockStore := openService(t, ctrl, seedBooks())
		mockStore.EXPECT().Save(gomock.Any(), []Book{seedBooks()[0], seedBooks()[2]}).Return(nil)

		err := service.Delete(ctx, 4)

		assert.NoError(t, err)
		assert.Equal(t, 2, service.Count())
		_, err = service.Get(ctx, 4)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("not found", func(t *testing.T) {
		service, _ := openService(t, ctrl, seedBooks())

		err := service.Delete(ctx, 3)

		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, 3, service.Count())
	})
}

func TestService_Scenario(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()
	service, mockStore := openService(t, ctrl, nil)
	mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	created, err := service.Create(ctx, Input{Author: "George Orwell", Name: "1984", Year: 1949})
	require.NoError(t, err)
	assert.Equal(t, Book{ID: 1, Author: "George Orwell", Name: "1984", Year: 1949}, created)

	byName, err := service.GetByName(ctx, "1984")
	require.NoError(t, err)
	assert.Equal(t, created, byName)

	require.NoError(t, service.Delete(ctx, 1))
	_, err = service.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_ConcurrentCreates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()
	service, mockStore := openService(t, ctrl, nil)
	mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).Times(20)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.Create(ctx, Input{Author: "a", Name: "b", Year: 1})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	books, err := service.List(ctx)
	require.NoError(t, err)
	seen := make(map[int]bool, len(books))
	for _, b := range books {
		assert.False(t, seen[b.ID], "duplicate id %d", b.ID)
		seen[b.ID] = true
	}
	assert.Len(t, books, 20)
}

func TestService_Reload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	service, mockStore := openService(t, ctrl, seedBooks())
	mockStore.EXPECT().Load(gomock.Any()).Return([]Book{{ID: 9, Author: "x", Name: "y", Year: 2}}, nil)

	require.NoError(t, service.Reload(context.Background()))

	assert.Equal(t, 1, service.Count())
	_, err := service.Get(context.Background(), 9)
	assert.NoError(t, err)
}
