package spaview

import (
	"reflect"
	"testing"
)

type testStore struct {
	Value string
}

type testGreeter interface {
	Greet() string
}

type testImplementation struct {
	Data string
}

func (t testImplementation) Greet() string { return t.Data }

func TestDepRegistry_add(t *testing.T) {
	tests := []struct {
		name    string
		deps    []any
		wantLen int
		wantErr bool
	}{
		{
			name:    "add nil value",
			deps:    []any{nil},
			wantLen: 0,
		},
		{
			name:    "add single value",
			deps:    []any{&testStore{Value: "test"}},
			wantLen: 1,
		},
		{
			name:    "add multiple different types",
			deps:    []any{&testStore{Value: "test"}, "string", 42},
			wantLen: 3,
		},
		{
			name:    "add duplicate type returns error",
			deps:    []any{&testStore{Value: "first"}, &testStore{Value: "second"}},
			wantLen: 1,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := make(depRegistry)
			var gotErr error
			for _, d := range tt.deps {
				if err := deps.add(d); err != nil {
					gotErr = err
				}
			}
			if (gotErr != nil) != tt.wantErr {
				t.Errorf("depRegistry.add() error = %v, wantErr %v", gotErr, tt.wantErr)
			}
			if got := len(deps); got != tt.wantLen {
				t.Errorf("depRegistry.add() length = %v, want %v", got, tt.wantLen)
			}
		})
	}
}

func TestDepRegistry_get(t *testing.T) {
	store := &testStore{Value: "test"}
	impl := &testImplementation{Data: "impl"}

	tests := []struct {
		name      string
		deps      []any
		want      reflect.Type
		wantFound bool
		wantValue any
	}{
		{
			name:      "exact pointer type",
			deps:      []any{store},
			want:      reflect.TypeOf(store),
			wantFound: true,
			wantValue: store,
		},
		{
			name:      "value when pointer registered",
			deps:      []any{store},
			want:      reflect.TypeOf(testStore{}),
			wantFound: true,
			wantValue: testStore{Value: "test"},
		},
		{
			name:      "interface from implementation",
			deps:      []any{impl},
			want:      reflect.TypeOf((*testGreeter)(nil)).Elem(),
			wantFound: true,
			wantValue: impl,
		},
		{
			name:      "missing type",
			deps:      []any{"string"},
			want:      reflect.TypeOf(0),
			wantFound: false,
		},
		{
			name:      "empty registry",
			want:      reflect.TypeOf(store),
			wantFound: false,
		},
		{
			name:      "pointer not derived from value",
			deps:      []any{testStore{Value: "v"}},
			want:      reflect.TypeOf(store),
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := make(depRegistry)
			for _, d := range tt.deps {
				if err := deps.add(d); err != nil {
					t.Fatal(err)
				}
			}
			got, found := deps.get(tt.want)
			if found != tt.wantFound {
				t.Fatalf("depRegistry.get() found = %v, want %v", found, tt.wantFound)
			}
			if !found {
				return
			}
			if !reflect.DeepEqual(got.Interface(), tt.wantValue) {
				t.Errorf("depRegistry.get() = %v, want %v", got.Interface(), tt.wantValue)
			}
		})
	}
}
