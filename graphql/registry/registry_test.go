package registry

import (
	"context"
	"errors"
	"testing"
)

func TestRegistry_Register_Resolve(t *testing.T) {
	defer Unregister("galleryEcho")

	Register("galleryEcho", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return map[string]interface{}{"productId": args["productId"]}, nil
	})

	got, err := Resolve(context.Background(), "galleryEcho", map[string]interface{}{"productId": 12.0})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	m, ok := got.(map[string]interface{})
	if !ok || m["productId"] != 12.0 {
		t.Errorf("got %v, want map[productId:12]", got)
	}
}

func TestRegistry_Resolve_Unknown(t *testing.T) {
	_, err := Resolve(context.Background(), "nonexistent", nil)
	if !errors.Is(err, ErrUnknownExtension) {
		t.Fatalf("err = %v, want ErrUnknownExtension", err)
	}
}

func TestRegistry_LockedAfterResolve(t *testing.T) {
	_, _ = Resolve(context.Background(), "nonexistent", nil)
	defer Unregister("late")
	defer func() {
		if r := recover(); r == nil {
			t.Error("Register after first Resolve should panic")
		}
	}()
	Register("late", func(context.Context, map[string]interface{}) (interface{}, error) { return nil, nil })
}

func TestRegistry_Names(t *testing.T) {
	Unregister("")
	defer Unregister("b-names")
	defer Unregister("a-names")
	Register("b-names", func(context.Context, map[string]interface{}) (interface{}, error) { return nil, nil })
	Register("a-names", func(context.Context, map[string]interface{}) (interface{}, error) { return nil, nil })

	names := Names()
	if len(names) != 2 || names[0] != "a-names" || names[1] != "b-names" {
		t.Errorf("Names() = %v, want [a-names b-names]", names)
	}
}
