package services

import (
	"math/rand"
	"sync"
)

// wordCatalog is the fixed pool of secret words civilians hint at.
var wordCatalog = []string{
	"Pizza", "Burger", "Sandwich", "Coffee", "Phone", "Computer", "Car", "Tree", "Book", "Chair",
	"Apple", "Water", "Shirt", "Clock", "Mirror", "Lamp", "Flower", "Bicycle", "Camera", "Guitar",
	"Bread", "Tea", "Shoes", "Window", "Pillow", "Pen", "Ball", "Hat", "Key", "Bag",
	"Rice", "Juice", "Pants", "Door", "Blanket", "Pencil", "Toy", "Glasses", "Ring", "Wallet",
	"Soup", "Milk", "Jacket", "Table", "Towel", "Paper", "Game", "Watch", "Coin", "Bottle",
}

// WordBank hands out secret words without replacement until the
// catalog is exhausted, then starts a new cycle. A word may repeat
// immediately across a cycle boundary; within a cycle it cannot.
type WordBank struct {
	catalog []string
	used    map[string]struct{}
	mu      sync.Mutex
}

func NewWordBank() *WordBank {
	return &WordBank{
		catalog: wordCatalog,
		used:    make(map[string]struct{}),
	}
}

// NextWord draws uniformly among the words not yet issued this cycle.
func (w *WordBank) NextWord() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	available := make([]string, 0, len(w.catalog))
	for _, word := range w.catalog {
		if _, taken := w.used[word]; !taken {
			available = append(available, word)
		}
	}

	if len(available) == 0 {
		w.used = make(map[string]struct{})
		available = w.catalog
	}

	word := available[rand.Intn(len(available))]
	w.used[word] = struct{}{}
	return word
}
