package domain

// Product represents the product entity
type Product struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int64   `json:"stock"`
}

// ProductSchema holds the field rules of the product resource
var ProductSchema = Schema{
	Resource: "product",
	Rules: []FieldRule{
		{Name: "title", Kind: KindString, Tag: "required", Message: "title must be a non-empty string"},
		{Name: "category", Kind: KindString, Tag: "required", Message: "category must be a non-empty string"},
		{Name: "description", Kind: KindString, Tag: "required", Message: "description must be a non-empty string"},
		{Name: "price", Kind: KindNumber, Tag: "gte=0", Message: "price must be a number >= 0"},
		{Name: "stock", Kind: KindInteger, Tag: "gte=0", Message: "stock must be an integer >= 0"},
	},
}

func (p *Product) GetID() string   { return p.ID }
func (p *Product) SetID(id string) { p.ID = id }

// Apply copies the present fields onto the product.
func (p *Product) Apply(f Fields) {
	if v, ok := f.String("title"); ok {
		p.Title = v
	}
	if v, ok := f.String("category"); ok {
		p.Category = v
	}
	if v, ok := f.String("description"); ok {
		p.Description = v
	}
	if v, ok := f.Number("price"); ok {
		p.Price = v
	}
	if v, ok := f.Integer("stock"); ok {
		p.Stock = v
	}
}

// ProductSeed is the demo catalog loaded when seeding is enabled.
var ProductSeed = []Payload{
	{"title": "Logitech M185 Wireless Mouse", "category": "Peripherals", "description": "Compact mouse with a USB receiver and long battery life.", "price": 1290, "stock": 35},
	{"title": "Redragon Kumara Keyboard", "category": "Peripherals", "description": "Backlit mechanical keyboard with anti-ghosting.", "price": 3590, "stock": 18},
	{"title": `Samsung 24" Monitor`, "category": "Monitors", "description": "IPS panel, Full HD, 75 Hz refresh rate.", "price": 12990, "stock": 12},
	{"title": "Sony WH-CH520 Headphones", "category": "Audio", "description": "Bluetooth headphones with microphone and up to 50 hours of playback.", "price": 5490, "stock": 22},
	{"title": "Logitech C270 Webcam", "category": "Webcams", "description": "HD 720p, built-in microphone, auto exposure.", "price": 2490, "stock": 16},
	{"title": "Kingston NV2 1TB SSD", "category": "Storage", "description": "M.2 NVMe SSD with fast reads and writes.", "price": 6990, "stock": 27},
	{"title": "ASUS VivoBook 15 Laptop", "category": "Laptops", "description": "15.6 inch, Ryzen 5, 16GB RAM, 512GB SSD.", "price": 58990, "stock": 7},
	{"title": "TP-Link Archer C6 Router", "category": "Networking", "description": "Dual-band router with MU-MIMO support.", "price": 3290, "stock": 19},
	{"title": "UGREEN 4-Port USB Hub", "category": "Accessories", "description": "USB 3.0 hub for connecting peripherals.", "price": 1490, "stock": 44},
	{"title": "Creative Pebble 2.0 Speakers", "category": "Audio", "description": "Compact USB-powered desktop speakers.", "price": 2990, "stock": 14},
}
