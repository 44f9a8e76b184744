package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	entity "gallery.GO/model/entity"
	productEntity "gallery.GO/model/entity/product"
)

func testDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&entity.EavAttribute{}, &entity.EavAttributeOption{}, &entity.EavAttributeOptionValue{},
		&productEntity.Product{}, &productEntity.ProductInt{},
		&productEntity.SuperAttribute{}, &productEntity.SuperLink{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

// seed creates configurable 1 varying on color (93) and size (94) with
// children 2 (red), 3 (blue) and 4 (no color).
func seed(t *testing.T, db *gorm.DB) {
	t.Helper()
	must := func(err error) {
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	must(db.Create(&[]entity.EavAttribute{
		{AttributeID: 93, EntityTypeID: 4, AttributeCode: "color", BackendType: "int"},
		{AttributeID: 94, EntityTypeID: 4, AttributeCode: "size", BackendType: "int"},
		{AttributeID: 95, EntityTypeID: 4, AttributeCode: DefaultColorAttribute, BackendType: "int"},
	}).Error)
	must(db.Create(&[]entity.EavAttributeOption{
		{OptionID: 10, AttributeID: 93, SortOrder: 2},
		{OptionID: 11, AttributeID: 93, SortOrder: 1},
		{OptionID: 12, AttributeID: 93, SortOrder: 3},
	}).Error)
	must(db.Create(&[]entity.EavAttributeOptionValue{
		{OptionID: 10, StoreID: 0, Value: strPtr("Red")},
		{OptionID: 10, StoreID: 1, Value: strPtr("Rojo")},
		{OptionID: 11, StoreID: 0, Value: strPtr("Blue")},
		{OptionID: 12, StoreID: 0, Value: strPtr("Green")},
	}).Error)
	must(db.Create(&[]productEntity.Product{
		{EntityID: 1, TypeID: productEntity.TypeConfigurable, SKU: "TEE"},
		{EntityID: 2, TypeID: productEntity.TypeSimple, SKU: "TEE-RED"},
		{EntityID: 3, TypeID: productEntity.TypeSimple, SKU: "TEE-BLUE"},
		{EntityID: 4, TypeID: productEntity.TypeSimple, SKU: "TEE-NONE"},
	}).Error)
	must(db.Create(&[]productEntity.SuperAttribute{
		{ProductID: 1, AttributeID: 94, Position: 1},
		{ProductID: 1, AttributeID: 93, Position: 0},
	}).Error)
	must(db.Create(&[]productEntity.SuperLink{
		{ProductID: 2, ParentID: 1},
		{ProductID: 3, ParentID: 1},
		{ProductID: 4, ParentID: 1},
	}).Error)
	must(db.Create(&[]productEntity.ProductInt{
		{AttributeID: 93, StoreID: 0, EntityID: 2, Value: intPtr(10)},
		{AttributeID: 93, StoreID: 0, EntityID: 3, Value: intPtr(12)},
		{AttributeID: 93, StoreID: 1, EntityID: 3, Value: intPtr(11)},
		{AttributeID: 95, StoreID: 0, EntityID: 1, Value: intPtr(11)},
	}).Error)
}

func TestCatalogRepository_IDForCode(t *testing.T) {
	db := testDB(t)
	seed(t, db)
	repo := NewCatalogRepository(db)

	id, err := repo.IDForCode(context.Background(), "color")
	if err != nil || id != 93 {
		t.Errorf("IDForCode(color) = %d, %v; want 93", id, err)
	}
	if _, err := repo.IDForCode(context.Background(), "missing"); err == nil {
		t.Error("IDForCode(missing): want error")
	}
}

func TestCatalogRepository_VariationAxesFor(t *testing.T) {
	db := testDB(t)
	seed(t, db)
	axes, err := NewCatalogRepository(db).VariationAxesFor(context.Background(), 1)
	if err != nil {
		t.Fatalf("VariationAxesFor: %v", err)
	}
	if len(axes) != 2 || axes[0] != "color" || axes[1] != "size" {
		t.Errorf("axes = %v, want [color size]", axes)
	}
}

func TestCatalogRepository_Children_StoreOverride(t *testing.T) {
	db := testDB(t)
	seed(t, db)
	repo := NewCatalogRepository(db)

	children, err := repo.Children(context.Background(), 1, "color", 0)
	if err != nil {
		t.Fatalf("Children: %v", err)
	}
	want := map[uint]int{2: 10, 3: 12, 4: 0}
	if len(children) != 3 {
		t.Fatalf("len = %d, want 3", len(children))
	}
	for _, c := range children {
		if c.ColorOptionID != want[c.ID] {
			t.Errorf("child %d color = %d, want %d", c.ID, c.ColorOptionID, want[c.ID])
		}
	}

	children, _ = repo.Children(context.Background(), 1, "color", 1)
	if children[1].ColorOptionID != 11 {
		t.Errorf("store 1 child 3 color = %d, want 11", children[1].ColorOptionID)
	}

	children, err = repo.Children(context.Background(), 1, "unknown", 0)
	if err != nil || children[0].ColorOptionID != 0 {
		t.Errorf("unknown attribute: %v, %v", children, err)
	}
}

func TestCatalogRepository_Options(t *testing.T) {
	db := testDB(t)
	seed(t, db)
	repo := NewCatalogRepository(db)

	opts, err := repo.Options(context.Background(), 93, 1)
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if len(opts) != 3 {
		t.Fatalf("len = %d, want 3", len(opts))
	}
	if opts[0].ID != 11 || opts[1].ID != 10 {
		t.Errorf("order = %d,%d; want 11,10", opts[0].ID, opts[1].ID)
	}
	if opts[1].Label != "Rojo" {
		t.Errorf("store label = %q, want Rojo", opts[1].Label)
	}
	if opts[0].Label != "Blue" {
		t.Errorf("admin fallback label = %q, want Blue", opts[0].Label)
	}
}

func TestCatalogRepository_DefaultColor(t *testing.T) {
	db := testDB(t)
	seed(t, db)
	repo := NewCatalogRepository(db)

	v, ok, err := repo.DefaultColor(context.Background(), 1, 0)
	if err != nil || !ok || v != 11 {
		t.Errorf("DefaultColor = %d, %v, %v; want 11, true", v, ok, err)
	}
	if _, ok, _ := repo.DefaultColor(context.Background(), 2, 0); ok {
		t.Error("child without default: want false")
	}
}

func TestCatalogRepository_ConfigurableProducts(t *testing.T) {
	db := testDB(t)
	seed(t, db)
	repo := NewCatalogRepository(db)

	ids, err := repo.ConfigurableProducts(context.Background(), time.Time{})
	if err != nil || len(ids) != 1 || ids[0] != 1 {
		t.Errorf("ConfigurableProducts = %v, %v; want [1]", ids, err)
	}
	ids, _ = repo.ConfigurableProducts(context.Background(), time.Now().Add(time.Hour))
	if len(ids) != 0 {
		t.Errorf("future since = %v, want none", ids)
	}
}
