package gallery

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	entity "gallery.GO/model/entity"
	productEntity "gallery.GO/model/entity/product"
	"gallery.GO/model/gallery"
)

func testDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&entity.EavAttribute{}, &productEntity.Product{}, &productEntity.ProductVarchar{},
		&productEntity.MediaGallery{}, &productEntity.MediaGalleryValue{}, &productEntity.MediaGalleryValueToEntity{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func addMedia(t *testing.T, db *gorm.DB, file, mediaType string, tag *string, position int, owners ...uint) uint {
	t.Helper()
	g := productEntity.MediaGallery{AttributeID: 90, Value: file, MediaType: mediaType}
	if err := db.Create(&g).Error; err != nil {
		t.Fatalf("create media: %v", err)
	}
	for _, owner := range owners {
		if err := db.Create(&productEntity.MediaGalleryValueToEntity{ValueID: g.ValueID, EntityID: owner}).Error; err != nil {
			t.Fatalf("link: %v", err)
		}
		v := productEntity.MediaGalleryValue{ValueID: g.ValueID, EntityID: owner, Position: intPtr(position), AssociatedAttributes: tag}
		if err := db.Create(&v).Error; err != nil {
			t.Fatalf("value: %v", err)
		}
	}
	return g.ValueID
}

func seedRoles(t *testing.T, db *gorm.DB) {
	t.Helper()
	err := db.Create(&[]entity.EavAttribute{
		{AttributeID: 85, EntityTypeID: 4, AttributeCode: "image", BackendType: "varchar"},
		{AttributeID: 86, EntityTypeID: 4, AttributeCode: "small_image", BackendType: "varchar"},
		{AttributeID: 87, EntityTypeID: 4, AttributeCode: "thumbnail", BackendType: "varchar"},
		{AttributeID: 88, EntityTypeID: 4, AttributeCode: "swatch_image", BackendType: "varchar"},
	}).Error
	if err != nil {
		t.Fatalf("seed roles: %v", err)
	}
}

func TestMediaRepository_ListMediaRecords(t *testing.T) {
	db := testDB(t)
	repo := NewMediaRepository(db)
	red := "attribute93-10"
	addMedia(t, db, "/r/red.jpg", "image", &red, 2, 1)
	addMedia(t, db, "/g/generic.jpg", "image", nil, 1, 1)
	addMedia(t, db, "/v/video.jpg", MediaTypeVideo, nil, 3, 1)
	addMedia(t, db, "/o/other.jpg", "image", nil, 1, 2)

	recs, err := repo.ListMediaRecords(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("ListMediaRecords: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("len = %d, want 3", len(recs))
	}
	if recs[0].File != "/g/generic.jpg" || recs[1].ColorTag != red {
		t.Errorf("records = %+v", recs)
	}
	if recs[2].Kind != gallery.KindVideo {
		t.Errorf("kind = %q, want video", recs[2].Kind)
	}
	if !recs[0].Enabled {
		t.Error("record should be enabled")
	}
}

func TestMediaRepository_MediaFiles_AllScopes(t *testing.T) {
	db := testDB(t)
	repo := NewMediaRepository(db)
	addMedia(t, db, "/g/generic.jpg", "image", nil, 1, 1)
	g := productEntity.MediaGallery{AttributeID: 90, Value: "/s/store.jpg", MediaType: "image"}
	if err := db.Create(&g).Error; err != nil {
		t.Fatalf("create media: %v", err)
	}
	if err := db.Create(&productEntity.MediaGalleryValue{ValueID: g.ValueID, EntityID: 1, StoreID: 2}).Error; err != nil {
		t.Fatalf("value: %v", err)
	}

	recs, _ := repo.ListMediaRecords(context.Background(), 1, 0)
	if len(recs) != 1 {
		t.Fatalf("default scope records = %d, want 1", len(recs))
	}
	files, err := repo.MediaFiles(context.Background(), 1)
	if err != nil {
		t.Fatalf("MediaFiles: %v", err)
	}
	if len(files) != 2 || files[0] != "/g/generic.jpg" || files[1] != "/s/store.jpg" {
		t.Errorf("files = %v, want [/g/generic.jpg /s/store.jpg]", files)
	}
}

func TestMediaRepository_SetColorTag(t *testing.T) {
	db := testDB(t)
	repo := NewMediaRepository(db)
	id := addMedia(t, db, "/a.jpg", "image", nil, 1, 1)

	if err := repo.SetColorTag(context.Background(), 1, id, "attribute93-10,attribute93-11"); err != nil {
		t.Fatalf("SetColorTag: %v", err)
	}
	recs, _ := repo.ListMediaRecords(context.Background(), 1, 0)
	if recs[0].ColorTag != "attribute93-10,attribute93-11" {
		t.Errorf("tag = %q", recs[0].ColorTag)
	}
	if err := repo.SetColorTag(context.Background(), 1, id, ""); err != nil {
		t.Fatalf("clear tag: %v", err)
	}
	var v productEntity.MediaGalleryValue
	db.Where("value_id = ?", id).First(&v)
	if v.AssociatedAttributes != nil {
		t.Errorf("cleared tag stored as %q, want NULL", *v.AssociatedAttributes)
	}
	if err := repo.SetColorTag(context.Background(), 9, id, "x"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("unknown product err = %v, want not found", err)
	}
}

func TestMediaRepository_LinkMedia_IndependentCopy(t *testing.T) {
	db := testDB(t)
	repo := NewMediaRepository(db)
	id := addMedia(t, db, "/a.jpg", "image", nil, 4, 1)
	src, _ := repo.ListMediaRecords(context.Background(), 1, 0)

	linked, err := repo.LinkMedia(context.Background(), 2, src[0], "attribute93-10")
	if err != nil {
		t.Fatalf("LinkMedia: %v", err)
	}
	if linked.ID == id {
		t.Error("linked record must be a new gallery row")
	}
	got, _ := repo.ListMediaRecords(context.Background(), 2, 0)
	if len(got) != 1 || got[0].File != "/a.jpg" || got[0].Position != 4 || got[0].ColorTag != "attribute93-10" {
		t.Errorf("child media = %+v", got)
	}
}

func TestMediaRepository_DeleteAllMedia_KeepsSharedFiles(t *testing.T) {
	db := testDB(t)
	repo := NewMediaRepository(db)
	own := addMedia(t, db, "/own.jpg", "image", nil, 1, 2)
	shared := addMedia(t, db, "/shared.jpg", "image", nil, 2, 2, 3)

	n, err := repo.DeleteAllMedia(context.Background(), 2)
	if err != nil {
		t.Fatalf("DeleteAllMedia: %v", err)
	}
	if n != 2 {
		t.Errorf("removed = %d, want 2", n)
	}
	var count int64
	db.Model(&productEntity.MediaGallery{}).Where("value_id = ?", own).Count(&count)
	if count != 0 {
		t.Error("unreferenced gallery row should be collected")
	}
	db.Model(&productEntity.MediaGallery{}).Where("value_id = ?", shared).Count(&count)
	if count != 1 {
		t.Error("gallery row still linked to product 3 must survive")
	}
	if recs, _ := repo.ListMediaRecords(context.Background(), 3, 0); len(recs) != 1 {
		t.Errorf("sibling media = %d, want 1", len(recs))
	}
	if recs, _ := repo.ListMediaRecords(context.Background(), 2, 0); len(recs) != 0 {
		t.Errorf("child media after delete = %d, want 0", len(recs))
	}
}

func TestMediaRepository_Roles(t *testing.T) {
	db := testDB(t)
	seedRoles(t, db)
	repo := NewMediaRepository(db)
	ctx := context.Background()

	roles := []string{"image", "small_image", "thumbnail"}
	if err := repo.AssignRoles(ctx, 2, "/a.jpg", roles); err != nil {
		t.Fatalf("AssignRoles: %v", err)
	}
	if err := repo.AssignRoles(ctx, 2, "/b.jpg", roles); err != nil {
		t.Fatalf("AssignRoles upsert: %v", err)
	}
	var rows []productEntity.ProductVarchar
	db.Where("entity_id = ?", 2).Find(&rows)
	if len(rows) != 3 {
		t.Fatalf("role rows = %d, want 3", len(rows))
	}
	for _, row := range rows {
		if *row.Value != "/b.jpg" {
			t.Errorf("role %d = %q, want /b.jpg", row.AttributeID, *row.Value)
		}
	}

	if err := repo.ResetRoleAttributes(ctx, 2, []string{"image", "small_image", "thumbnail", "swatch_image"}); err != nil {
		t.Fatalf("ResetRoleAttributes: %v", err)
	}
	var count int64
	db.Model(&productEntity.ProductVarchar{}).Where("entity_id = ?", 2).Count(&count)
	if count != 0 {
		t.Errorf("role rows after reset = %d, want 0", count)
	}
}

func TestMediaRepository_WithinTx_RollsBack(t *testing.T) {
	db := testDB(t)
	repo := NewMediaRepository(db)
	addMedia(t, db, "/a.jpg", "image", nil, 1, 1)
	src, _ := repo.ListMediaRecords(context.Background(), 1, 0)

	boom := errors.New("boom")
	err := repo.WithinTx(context.Background(), func(tx gallery.MediaStore) error {
		if _, err := tx.LinkMedia(context.Background(), 2, src[0], ""); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithinTx err = %v, want boom", err)
	}
	if recs, _ := repo.ListMediaRecords(context.Background(), 2, 0); len(recs) != 0 {
		t.Errorf("rolled back link still visible: %+v", recs)
	}
}

func TestMediaRepository_WithinTx_NestedSavepoint(t *testing.T) {
	db := testDB(t)
	repo := NewMediaRepository(db)
	addMedia(t, db, "/a.jpg", "image", nil, 1, 1)
	addMedia(t, db, "/b.jpg", "image", nil, 2, 1)
	src, _ := repo.ListMediaRecords(context.Background(), 1, 0)

	err := repo.WithinTx(context.Background(), func(tx gallery.MediaStore) error {
		_ = tx.WithinTx(context.Background(), func(inner gallery.MediaStore) error {
			if _, err := inner.LinkMedia(context.Background(), 2, src[0], ""); err != nil {
				return err
			}
			return errors.New("bad record")
		})
		return tx.WithinTx(context.Background(), func(inner gallery.MediaStore) error {
			_, err := inner.LinkMedia(context.Background(), 2, src[1], "")
			return err
		})
	})
	if err != nil {
		t.Fatalf("WithinTx: %v", err)
	}
	recs, _ := repo.ListMediaRecords(context.Background(), 2, 0)
	if len(recs) != 1 || recs[0].File != "/b.jpg" {
		t.Errorf("child media = %+v, want only /b.jpg", recs)
	}
}
