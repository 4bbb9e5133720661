package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-retail-pos/internal/handler"
	"go-retail-pos/internal/middleware"
	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
	"go-retail-pos/internal/service"
	"go-retail-pos/internal/ws"
	"go-retail-pos/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	db.AutoMigrate(
		&model.Product{},
		&model.Request{},
		&model.AuditEntry{},
		&model.Sale{},
		&model.SaleItem{},
		&model.User{},
		&model.Permission{},
		&model.Role{},
	)

	// 3. Seed default permissions, roles, and admin user
	seedPermissionsRolesAndAdmin(db)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	requestRepo := repository.NewRequestRepo(db)
	auditRepo := repository.NewAuditRepo(db)
	saleRepo := repository.NewSaleRepo(db)
	userRepo := repository.NewUserRepo(db)
	permissionRepo := repository.NewPermissionRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	catalogService := service.NewCatalogService(productRepo, requestRepo, auditRepo, db, wsHub)
	conversionService := service.NewConversionService(productRepo, requestRepo, auditRepo, db, wsHub)
	approvalService := service.NewApprovalService(productRepo, requestRepo, auditRepo, db, wsHub)
	salesService := service.NewSalesService(productRepo, saleRepo, auditRepo, db, wsHub)
	reportService := service.NewReportService(saleRepo, productRepo)
	authService := service.NewAuthService(userRepo, wsHub)
	userService := service.NewUserService(userRepo, permissionRepo, roleRepo)

	catalogHandler := handler.NewCatalogHandler(catalogService, conversionService)
	approvalHandler := handler.NewApprovalHandler(approvalService)
	salesHandler := handler.NewSalesHandler(salesService)
	reportHandler := handler.NewReportHandler(reportService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleRepo)
	auditHandler := handler.NewAuditHandler(auditRepo)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Retail POS v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/heartbeat", middleware.RequireAuth(userRepo), authHandler.Heartbeat)

	// ============ PROTECTED ROUTES ============
	// All routes below require authentication
	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Dashboard / Reports
	protected.Get("/dashboard/stats", middleware.RequirePermission(model.PermDashboard), reportHandler.GetDashboardStats)
	protected.Get("/dashboard/sales-movement", middleware.RequirePermission(model.PermDashboard), reportHandler.GetSalesMovement)
	protected.Get("/reports/low-stock", middleware.RequirePermission(model.PermReports), reportHandler.GetLowStockProducts)
	protected.Get("/reports/sales/export", middleware.RequirePermission(model.PermReports), reportHandler.ExportSales)

	// Product Catalog (non-admin mutations are queued for approval)
	protected.Get("/products", catalogHandler.GetProducts)
	protected.Get("/products/:id", catalogHandler.GetProduct)
	protected.Post("/products", middleware.RequirePermission(model.PermInventory), catalogHandler.CreateProduct)
	protected.Put("/products/:id", middleware.RequirePermission(model.PermInventory), catalogHandler.UpdateProduct)
	protected.Delete("/products/:id", middleware.RequirePermission(model.PermInventory), catalogHandler.DeleteProduct)
	protected.Post("/products/convert", middleware.RequirePermission(model.PermInventory), catalogHandler.ConvertStock)

	// Approval Queue (admin only for resolution)
	protected.Get("/requests", approvalHandler.GetRequests)
	protected.Get("/requests/:id", approvalHandler.GetRequest)
	protected.Post("/requests/:id/approve", middleware.RequireAdmin(), approvalHandler.Approve)
	protected.Post("/requests/:id/reject", middleware.RequireAdmin(), approvalHandler.Reject)

	// Sales / Checkout
	protected.Get("/sales", middleware.RequirePermission(model.PermPOS), salesHandler.GetSales)
	protected.Get("/sales/:id", middleware.RequirePermission(model.PermPOS), salesHandler.GetSale)
	protected.Post("/sales", middleware.RequirePermission(model.PermPOS), salesHandler.RecordSale)

	// Audit Log (admin only)
	protected.Get("/audit", middleware.RequireAdmin(), auditHandler.GetAuditLog)

	// User Management (admin only)
	protected.Get("/users", middleware.RequireAdmin(), userHandler.GetUsers)
	protected.Get("/users/:id", middleware.RequireAdmin(), userHandler.GetUser)
	protected.Post("/users", middleware.RequireAdmin(), userHandler.CreateUser)
	protected.Put("/users/:id", middleware.RequireAdmin(), userHandler.UpdateUser)
	protected.Delete("/users/:id", middleware.RequireAdmin(), userHandler.DeleteUser)
	protected.Put("/users/:id/permissions", middleware.RequireAdmin(), userHandler.UpdateUserPermissions)

	// Role / Permission lookups
	protected.Get("/roles", roleHandler.GetRoles)
	protected.Get("/permissions", func(c *fiber.Ctx) error {
		permissions, err := permissionRepo.FindAll()
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch permissions"})
		}
		return c.JSON(permissions)
	})

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// seedPermissionsRolesAndAdmin creates default permissions, roles, and the
// initial admin user if they don't exist
func seedPermissionsRolesAndAdmin(db *gorm.DB) {
	permissionRepo := repository.NewPermissionRepo(db)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	// 1. Seed permissions first
	if err := permissionRepo.SeedDefaults(); err != nil {
		log.Printf("Warning: Failed to seed permissions: %v", err)
	}

	// 2. Seed roles
	if err := roleRepo.SeedDefaults(); err != nil {
		log.Printf("Warning: Failed to seed roles: %v", err)
	}

	// 3. Assign permissions to roles
	allPermissions, _ := permissionRepo.FindAll()

	// ADMIN gets the full capability set (also holds every capability
	// implicitly, the assignment just keeps the UI honest)
	adminRole, err := roleRepo.FindByCode(model.RoleAdmin)
	if err == nil && len(adminRole.Permissions) == 0 {
		db.Model(&adminRole).Association("Permissions").Replace(allPermissions)
		log.Println("ADMIN role assigned all permissions")
	}

	// EMPLOYEE gets the sales-floor subset
	employeeRole, err := roleRepo.FindByCode(model.RoleEmployee)
	if err == nil && len(employeeRole.Permissions) == 0 {
		employeePermissions := []model.Permission{}
		for _, p := range allPermissions {
			if p.Code == model.PermDashboard || p.Code == model.PermPOS || p.Code == model.PermInventory {
				employeePermissions = append(employeePermissions, p)
			}
		}
		db.Model(&employeeRole).Association("Permissions").Replace(employeePermissions)
		log.Println("EMPLOYEE role assigned sales-floor permissions")
	}

	// 4. Create default admin user
	_, err = userRepo.FindByUsername("admin")
	if err != nil {
		adminRole, _ := roleRepo.FindByCode(model.RoleAdmin)

		admin := &model.User{
			Username:    "admin",
			FullName:    "Administrator",
			RoleID:      &adminRole.ID,
			IsActive:    true,
			Permissions: adminRole.Permissions,
		}
		admin.CreatedBy = "system"
		admin.UpdatedBy = "system"

		if err := admin.SetPassword("admin123"); err != nil {
			log.Printf("Warning: Failed to hash admin password: %v", err)
			return
		}

		if err := userRepo.Create(admin); err != nil {
			log.Printf("Warning: Failed to create admin user: %v", err)
		} else {
			log.Println("Admin user created: admin / admin123")
		}
	}
}
