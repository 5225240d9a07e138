// Package catalog holds the in-memory product catalog that backs local text
// search when the semantic search service is unavailable.
package catalog

import (
	"strings"

	"github.com/cvety-kz/cvety-chat-service/internal/models"
)

var products = []models.Product{
	{
		ID:          "1",
		Name:        "Красные розы \"Страсть\"",
		Price:       15000,
		Image:       "https://images.unsplash.com/photo-1565485117423-84d0b0c1c34c?w=400&h=300&fit=crop",
		Description: "25 красных роз премиум класса, 60 см",
		Category:    "Розы",
		InStock:     true,
		Rating:      4.9,
		IsPopular:   true,
	},
	{
		ID:          "2",
		Name:        "Белые розы \"Невеста\"",
		Price:       18500,
		Image:       "https://images.unsplash.com/photo-1511799739531-40d9526b4e5d?w=400&h=300&fit=crop",
		Description: "31 белая роза, идеально для свадьбы и торжеств",
		Category:    "Розы",
		InStock:     true,
		Rating:      4.8,
	},
	{
		ID:          "3",
		Name:        "Микс роз \"Радуга\"",
		Price:       12000,
		Image:       "https://images.unsplash.com/photo-1463320898766-4665b12aa1a4?w=400&h=300&fit=crop",
		Description: "21 роза разных цветов - яркий букет для особых моментов",
		Category:    "Розы",
		InStock:     true,
		Rating:      4.7,
	},
	{
		ID:          "4",
		Name:        "Букет \"Нежность\"",
		Price:       8500,
		Image:       "https://images.unsplash.com/photo-1520271348391-049dd132bb7c?w=400&h=300&fit=crop",
		Description: "Нежный букет из хризантем и роз",
		Category:    "Смешанные",
		InStock:     true,
		Rating:      4.6,
		IsPopular:   true,
	},
	{
		ID:          "5",
		Name:        "Букет \"Весенний день\"",
		Price:       9500,
		Image:       "https://images.unsplash.com/photo-1584464491033-06628f3a6b7b?w=400&h=300&fit=crop",
		Description: "Тюльпаны и нарциссы - дыхание весны",
		Category:    "Весенние",
		InStock:     true,
		Rating:      4.5,
	},
	{
		ID:          "6",
		Name:        "Букет \"Романтика\"",
		Price:       18000,
		Image:       "https://images.unsplash.com/photo-1518895949257-7621c3c786d7?w=400&h=300&fit=crop",
		Description: "Роскошная композиция из пионов и роз",
		Category:    "Премиум",
		InStock:     false,
		Rating:      5.0,
	},
	{
		ID:          "7",
		Name:        "Открытка \"С днем рождения\"",
		Price:       1500,
		Image:       "https://images.unsplash.com/photo-1621793490481-c1c0bb9e6e84?w=400&h=300&fit=crop",
		Description: "Красивая открытка ручной работы",
		Category:    "Открытки",
		InStock:     true,
		Rating:      4.3,
	},
	{
		ID:          "8",
		Name:        "Шоколадные конфеты",
		Price:       3500,
		Image:       "https://images.unsplash.com/photo-1549007994-cb92caebd54b?w=400&h=300&fit=crop",
		Description: "Коробка бельгийского шоколада",
		Category:    "Подарки",
		InStock:     true,
		Rating:      4.4,
	},
}

// All returns a copy of the full catalog in fixed order.
func All() []models.Product {
	out := make([]models.Product, len(products))
	copy(out, products)
	return out
}

// Top returns the first n catalog products.
func Top(n int) []models.Product {
	if n > len(products) {
		n = len(products)
	}
	out := make([]models.Product, n)
	copy(out, products[:n])
	return out
}

// Search matches query case-insensitively against name, description and
// category, truncating to maxResults. maxResults <= 0 means no limit.
func Search(query string, maxResults int) []models.Product {
	lower := strings.ToLower(query)

	var out []models.Product
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), lower) ||
			strings.Contains(strings.ToLower(p.Description), lower) ||
			strings.Contains(strings.ToLower(p.Category), lower) {
			out = append(out, p)
			if maxResults > 0 && len(out) >= maxResults {
				break
			}
		}
	}
	return out
}

// Popular returns the products flagged as popular.
func Popular() []models.Product {
	var out []models.Product
	for _, p := range products {
		if p.IsPopular {
			out = append(out, p)
		}
	}
	return out
}
