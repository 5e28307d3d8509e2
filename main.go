package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"printshop/internal/config"
	"printshop/internal/database"
	"printshop/internal/gateway"
	"printshop/internal/handlers"
	"printshop/internal/middleware"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureProductIndexes(db); err != nil {
		log.Printf("product index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("order index warning: %v", err)
	}
	if err := database.EnsureTransactionIndexes(db); err != nil {
		log.Printf("transaction index warning: %v", err)
	}
	if err := database.EnsureTierIndexes(db); err != nil {
		log.Printf("tier index warning: %v", err)
	}
	if err := database.EnsureAdminIndexes(db); err != nil {
		log.Printf("admin index warning: %v", err)
	}

	gw := gateway.NewMockGateway(config.AppEnv.GatewayDelay)

	r := gin.Default()

	r.GET("/products", handlers.GetProducts(db))
	r.GET("/products/sale", handlers.GetSaleProducts(db))
	r.GET("/products/:id", handlers.GetProduct(db))
	r.GET("/categories", handlers.GetCategories(db))

	r.POST("/orders", handlers.CreateOrder(db, config.AppEnv.JWTSecret))
	r.GET("/orders/:id", handlers.GetOrder(db))

	r.POST("/checkout", handlers.SubmitCheckout(db, gw, config.AppEnv.GatewayTimeout, config.AppEnv.JWTSecret))

	payment := r.Group("/payments")
	payment.Use(middleware.PaymentCORS())
	{
		payment.POST("/process", handlers.ProcessPayment(db, gw, config.AppEnv.GatewayTimeout))
		payment.OPTIONS("/process", func(c *gin.Context) {})
	}

	r.POST("/admin/login", handlers.AdminLogin(db, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL))

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(config.AppEnv.JWTSecret))
	{
		admin.GET("/me", func(c *gin.Context) {
			c.JSON(200, gin.H{"ok": true})
		})

		admin.GET("/products", handlers.GetAllProducts(db))
		admin.POST("/products", handlers.CreateProduct(db))
		admin.PUT("/products/:id", handlers.UpdateProduct(db))
		admin.DELETE("/products/:id", handlers.DeleteProduct(db))
		admin.GET("/products/:id/tiers", handlers.GetProductTiers(db))

		admin.POST("/tiers", handlers.CreateTier(db))
		admin.PUT("/tiers/:id", handlers.UpdateTier(db))
		admin.DELETE("/tiers/:id", handlers.DeleteTier(db))

		admin.GET("/categories", handlers.GetAllCategories(db))
		admin.POST("/categories", handlers.CreateCategory(db))
		admin.PUT("/categories/:id", handlers.UpdateCategory(db))
		admin.DELETE("/categories/:id", handlers.DeleteCategory(db))

		admin.GET("/orders", handlers.GetAllOrders(db))
		admin.PUT("/orders/:id/status", handlers.UpdateOrderStatus(db))
		admin.DELETE("/orders/:id", handlers.DeleteOrder(db))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}
