package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/glintmarket/storefront/internal/models"
)

func TestListProductsSeedScenario(t *testing.T) {
	env := newTestEnv(t)
	env.seedCatalog()

	rec := env.do(http.MethodGet, "/api/products?skip=0&limit=100", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var products []models.Product
	env.decode(rec, &products)
	require.Len(t, products, 1)

	p := products[0]
	require.Equal(t, "crystal-pendant-necklace", p.Slug)
	require.Equal(t, "Crystal Pendant Necklace", p.Name)
	require.Equal(t, 129.99, p.Price)
	require.NotNil(t, p.SalePrice)
	require.Equal(t, 99.99, *p.SalePrice)
	require.NotNil(t, p.Reviews)
	require.Empty(t, p.Reviews)

	missing := env.do(http.MethodGet, "/api/products/missing", nil, "")
	require.Equal(t, http.StatusNotFound, missing.Code)
}

func TestGetProductBySlugRoundtrip(t *testing.T) {
	env := newTestEnv(t)
	seeded := env.seedCatalog()

	rec := env.do(http.MethodGet, "/api/products/crystal-pendant-necklace", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var p models.Product
	env.decode(rec, &p)
	require.Equal(t, seeded.ID, p.ID)
	require.Equal(t, seeded.Name, p.Name)
	require.Equal(t, seeded.Price, p.Price)
	require.Equal(t, []string{"https://cdn.example.com/pendant.jpg"}, p.Images)
	require.Equal(t, []string{"necklace", "crystal"}, p.Tags)
	require.Empty(t, p.Reviews)

	// Reviews show up nested once one exists.
	user, bearer := env.createUser("Alice", "alice@example.com", models.RoleUser)
	review := env.do(http.MethodPost, "/api/products/crystal-pendant-necklace/reviews", map[string]any{
		"rating":  5,
		"comment": "stunning",
	}, bearer)
	require.Equal(t, http.StatusCreated, review.Code)

	rec = env.do(http.MethodGet, "/api/products/crystal-pendant-necklace", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	env.decode(rec, &p)
	require.Len(t, p.Reviews, 1)
	require.Equal(t, user.ID, p.Reviews[0].UserID)
	require.Equal(t, "Alice", p.Reviews[0].UserName)
	require.Equal(t, 5.0, p.RatingAverage)
}

func TestReviewUserNameIsSnapshot(t *testing.T) {
	env := newTestEnv(t)
	env.seedCatalog()
	user, bearer := env.createUser("Alice", "alice@example.com", models.RoleUser)

	rec := env.do(http.MethodPost, "/api/products/crystal-pendant-necklace/reviews", map[string]any{
		"rating": 4,
	}, bearer)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.NoError(t, env.DB.Model(user).Update("name", "Alicia").Error)

	var review models.Review
	require.NoError(t, env.DB.Where("user_id = ?", user.ID).First(&review).Error)
	require.Equal(t, "Alice", review.UserName)
}

func TestReviewRatingBounds(t *testing.T) {
	env := newTestEnv(t)
	env.seedCatalog()
	_, bearer := env.createUser("Alice", "alice@example.com", models.RoleUser)

	for _, rating := range []float64{-1, 5.5, 100} {
		rec := env.do(http.MethodPost, "/api/products/crystal-pendant-necklace/reviews", map[string]any{
			"rating": rating,
		}, bearer)
		require.Equal(t, http.StatusBadRequest, rec.Code, "rating %v", rating)
	}
}

func TestAdminProductCRUD(t *testing.T) {
	env := newTestEnv(t)
	seeded := env.seedCatalog()
	_, admin := env.createUser("Root", "root@example.com", models.RoleAdmin)
	_, user := env.createUser("Alice", "alice@example.com", models.RoleUser)

	// Plain users cannot touch the admin surface.
	denied := env.do(http.MethodPost, "/api/admin/products", map[string]any{}, user)
	require.Equal(t, http.StatusForbidden, denied.Code)

	created := env.do(http.MethodPost, "/api/admin/products", map[string]any{
		"category_id": seeded.CategoryID,
		"brand_id":    seeded.BrandID,
		"name":        "Crystal Earrings",
		"slug":        "crystal-earrings",
		"price":       59.99,
		"quantity":    5,
	}, admin)
	require.Equal(t, http.StatusCreated, created.Code)

	var p models.Product
	env.decode(created, &p)
	require.Equal(t, "crystal-earrings", p.Slug)
	require.True(t, p.InStock)

	dupSlug := env.do(http.MethodPost, "/api/admin/products", map[string]any{
		"category_id": seeded.CategoryID,
		"brand_id":    seeded.BrandID,
		"name":        "Other",
		"slug":        "crystal-earrings",
		"price":       1,
	}, admin)
	require.Equal(t, http.StatusBadRequest, dupSlug.Code)

	patched := env.do(http.MethodPatch, "/api/admin/products/"+itoa(p.ID), map[string]any{
		"price":    49.99,
		"in_stock": false,
	}, admin)
	require.Equal(t, http.StatusOK, patched.Code)
	env.decode(patched, &p)
	require.Equal(t, 49.99, p.Price)
	require.False(t, p.InStock)

	deleted := env.do(http.MethodDelete, "/api/admin/products/"+itoa(p.ID), nil, admin)
	require.Equal(t, http.StatusNoContent, deleted.Code)

	gone := env.do(http.MethodGet, "/api/products/crystal-earrings", nil, "")
	require.Equal(t, http.StatusNotFound, gone.Code)
}

func TestDeleteCategoryRequiresEmpty(t *testing.T) {
	env := newTestEnv(t)
	product := env.seedCatalog()
	_, admin := env.createUser("Root", "root@example.com", models.RoleAdmin)

	rec := env.do(http.MethodDelete, "/api/admin/categories/"+itoa(product.CategoryID), nil, admin)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var count int64
	require.NoError(t, env.DB.Model(&models.Category{}).Count(&count).Error)
	require.EqualValues(t, 1, count)

	// Once emptied the delete goes through.
	require.NoError(t, env.DB.Where("product_id = ?", product.ID).Delete(&models.Review{}).Error)
	require.NoError(t, env.DB.Delete(&models.Product{}, product.ID).Error)
	rec = env.do(http.MethodDelete, "/api/admin/categories/"+itoa(product.CategoryID), nil, admin)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCategoriesAndBrandsArePublic(t *testing.T) {
	env := newTestEnv(t)
	product := env.seedCatalog()

	categories := env.do(http.MethodGet, "/api/products/categories", nil, "")
	require.Equal(t, http.StatusOK, categories.Code)
	var cats []models.Category
	env.decode(categories, &cats)
	require.Len(t, cats, 1)
	require.Equal(t, "jewelry", cats[0].Slug)

	one := env.do(http.MethodGet, "/api/products/categories/"+itoa(product.CategoryID), nil, "")
	require.Equal(t, http.StatusOK, one.Code)

	missing := env.do(http.MethodGet, "/api/products/categories/999", nil, "")
	require.Equal(t, http.StatusNotFound, missing.Code)

	brands := env.do(http.MethodGet, "/api/products/brands", nil, "")
	require.Equal(t, http.StatusOK, brands.Code)
	var bs []models.Brand
	env.decode(brands, &bs)
	require.Len(t, bs, 1)
	require.Equal(t, "crystal-elegance", bs[0].Slug)
}
