package engine

import (
	"context"
	"strings"

	"github.com/cvety-kz/cvety-chat-service/internal/models"
	"github.com/cvety-kz/cvety-chat-service/internal/search"
)

// reply is what a turn produces before it becomes a transcript message.
type reply struct {
	content       string
	products      []models.Product
	showCart      bool
	showOrderForm bool
	source        search.Source
}

const (
	deliveryInfo = "🚚 Доставка:\n\n• По Алматы: 2000₸ (2-4 часа)\n• По Астане: 2500₸ (3-5 часов)\n• Бесплатная доставка при заказе от 15000₸\n• Срочная доставка (1-2 часа): +1000₸"

	greetingInfo = "👋 Добро пожаловать в Cvety.kz!\n\nЯ помогу вам выбрать идеальный букет. Могу показать:\n• 🌹 Розы\n• 🌸 Букеты\n• 💰 Цены\n• 🚚 Информацию о доставке\n\nЧто вас интересует?"

	helpInfo = "🤖 Я могу помочь вам:\n\n• Показать букеты и розы\n• Рассказать о ценах\n• Объяснить условия доставки\n• Помочь оформить заказ\n• Показать вашу корзину\n\nПросто спросите: \"Покажи розы\" или \"Что есть в наличии?\""

	offlineInfo = "🤖 AI сервис временно недоступен, но я могу помочь!\n\nПопробуйте спросить:\n• \"Что есть в наличии?\"\n• \"Покажи розы\"\n• \"Сколько стоит доставка?\"\n• \"Помощь\""
)

// fallbackRule answers a message by keyword when the AI backend is out.
// Rules are evaluated in order; the first match wins.
type fallbackRule struct {
	name     string
	keywords []string
	build    func(ctx context.Context, e *Engine, msg string) reply
}

func containsAny(msg string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}

// fallbackRules is the fixed rule chain. The terminal rule has no keywords
// and always matches.
var fallbackRules = []fallbackRule{
	{
		name:     "inventory",
		keywords: []string{"наличии", "есть", "ассортимент"},
		build: func(ctx context.Context, e *Engine, msg string) reply {
			products, source := e.search.Search(ctx, "букеты цветы в наличии ассортимент", 8)
			return reply{content: "🌸 Вот что у нас есть в наличии:", products: products, source: source}
		},
	},
	{
		name:     "roses",
		keywords: []string{"розы", "роз"},
		build: func(ctx context.Context, e *Engine, msg string) reply {
			products, source := e.search.Search(ctx, "красивые розы красные белые букеты", 6)
			return reply{content: "🌹 Вот наши прекрасные розы:", products: products, source: source}
		},
	},
	{
		name:     "bouquets",
		keywords: []string{"букет", "цветы"},
		build: func(ctx context.Context, e *Engine, msg string) reply {
			products, source := e.search.Search(ctx, "красивые букеты цветы композиции", 6)
			return reply{content: "🌸 Показываю букеты по вашему запросу:", products: products, source: source}
		},
	},
	{
		name:     "cart",
		keywords: []string{"корзин"},
		build: func(ctx context.Context, e *Engine, msg string) reply {
			return reply{content: "🛒 Ваша корзина:", showCart: true}
		},
	},
	{
		name:     "prices",
		keywords: []string{"цена", "стоимость", "сколько"},
		build: func(ctx context.Context, e *Engine, msg string) reply {
			products, source := e.search.Search(ctx, "недорогие букеты цены стоимость", 6)
			return reply{content: "💰 Цены на наши букеты:", products: products, source: source}
		},
	},
	{
		name:     "delivery",
		keywords: []string{"доставка", "доставить"},
		build: func(ctx context.Context, e *Engine, msg string) reply {
			return reply{content: deliveryInfo}
		},
	},
	{
		name:     "order",
		keywords: []string{"заказ", "оформить"},
		build: func(ctx context.Context, e *Engine, msg string) reply {
			return reply{content: "📝 Давайте оформим ваш заказ:", showOrderForm: true}
		},
	},
	{
		name:     "greeting",
		keywords: []string{"привет", "здравствуйте", "добро"},
		build: func(ctx context.Context, e *Engine, msg string) reply {
			return reply{content: greetingInfo}
		},
	},
	{
		name:     "help",
		keywords: []string{"помощь", "помоги", "как"},
		build: func(ctx context.Context, e *Engine, msg string) reply {
			return reply{content: helpInfo}
		},
	},
	{
		name: "default",
		build: func(ctx context.Context, e *Engine, msg string) reply {
			return reply{content: offlineInfo}
		},
	},
}

// matchFallback returns the first matching rule for a lowered message.
func matchFallback(msg string) fallbackRule {
	for _, rule := range fallbackRules {
		if len(rule.keywords) == 0 || containsAny(msg, rule.keywords) {
			return rule
		}
	}
	return fallbackRules[len(fallbackRules)-1]
}
