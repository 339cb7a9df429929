package store

import "github.com/shopspring/decimal"

// Seed builds the registry of prototype stores with their starting
// catalogs. Called once at process startup.
func Seed() *Registry {
	r := NewRegistry()

	s1 := New(1, "Sunnyvale Fresh Mart")
	mustAdd(s1, "Bananas", "0.69", 100)
	mustAdd(s1, "Milk (1 gal)", "4.49", 30)
	mustAdd(s1, "Eggs (dozen)", "3.99", 40)
	r.Add(s1)

	s2 := New(2, "Neighborhood Grocers")
	mustAdd(s2, "Apples (lb)", "1.29", 80)
	mustAdd(s2, "Bread", "3.49", 50)
	mustAdd(s2, "Rice (5 lb)", "7.99", 20)
	r.Add(s2)

	s3 := New(3, "Organic Corner")
	mustAdd(s3, "Avocados", "1.99", 60)
	mustAdd(s3, "Greek Yogurt", "1.49", 45)
	mustAdd(s3, "Spinach", "2.99", 35)
	r.Add(s3)

	return r
}

func mustAdd(s *Store, name, price string, quantity int) {
	if _, err := s.AddProduct(name, decimal.RequireFromString(price), quantity); err != nil {
		panic(err)
	}
}
