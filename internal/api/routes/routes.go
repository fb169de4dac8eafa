package routes

import (
	"baustelle-wms-api-server/internal/api/handlers"
	"baustelle-wms-api-server/internal/api/middleware"
	"baustelle-wms-api-server/internal/cache"
	"baustelle-wms-api-server/internal/models"
	"baustelle-wms-api-server/internal/notify"
	"baustelle-wms-api-server/internal/s3"
	"baustelle-wms-api-server/internal/socket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupRouter wires every handler with its dependencies and declares the
// route tree. Role groups mirror the warehouse organisation: workers request
// material, warehouse staff fulfil it, purchasing talks to suppliers.
func SetupRouter(
	db *mongo.Database,
	s3Uploader *s3.Uploader,
	wsHub *socket.Hub,
	cacheClient *cache.Client,
	notifier *notify.Service,
) *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
	}))

	requestHandler := &handlers.RequestHandler{DB: db, Notifier: notifier}
	notificationHandler := &handlers.NotificationHandler{DB: db, Hub: wsHub, Cache: cacheClient, Notifier: notifier}
	itemHandler := &handlers.ItemHandler{DB: db, Notifier: notifier}
	siteHandler := &handlers.SiteHandler{DB: db}
	projectHandler := &handlers.ProjectHandler{DB: db}
	subcontractorHandler := &handlers.SubcontractorHandler{DB: db}
	warehouseHandler := &handlers.WarehouseHandler{DB: db, Notifier: notifier}
	supplierHandler := &handlers.SupplierHandler{DB: db}
	poHandler := &handlers.PurchaseOrderHandler{DB: db, Notifier: notifier, Warehouse: warehouseHandler}
	returnHandler := &handlers.ReturnHandler{DB: db, Notifier: notifier, Warehouse: warehouseHandler}
	transferHandler := &handlers.TransferHandler{DB: db, Notifier: notifier}
	statsHandler := &handlers.StatsHandler{DB: db, Cache: cacheClient}
	uploadHandler := &handlers.UploadHandler{S3Uploader: s3Uploader}
	userHandler := &handlers.UserHandler{DB: db}
	webSocketHandler := &handlers.WebSocketHandler{Hub: wsHub}

	apiV1 := router.Group("/api/v1")
	{
		// WebSocket authenticates via ?token= inside the handler.
		apiV1.GET("/ws", webSocketHandler.ServeWs)

		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", userHandler.Login)
		}

		// Admin only.
		admin := apiV1.Group("/admin")
		admin.Use(middleware.Authenticate())
		admin.Use(middleware.Authorize(models.RoleAdmin))
		{
			admin.POST("/users", userHandler.CreateUser)
			admin.POST("/notifications", notificationHandler.CreateNotification)

			sites := admin.Group("/sites")
			{
				sites.POST("/", siteHandler.CreateSite)
				sites.PUT("/:id", siteHandler.UpdateSite)
				sites.DELETE("/:id", siteHandler.DeleteSite)
			}

			projects := admin.Group("/projects")
			{
				projects.POST("/", projectHandler.CreateProject)
				projects.PUT("/:id", projectHandler.UpdateProject)
				projects.DELETE("/:id", projectHandler.DeleteProject)
			}

			subcontractors := admin.Group("/subcontractors")
			{
				subcontractors.POST("/", subcontractorHandler.CreateSubcontractor)
				subcontractors.PUT("/:id", subcontractorHandler.UpdateSubcontractor)
				subcontractors.DELETE("/:id", subcontractorHandler.DeleteSubcontractor)
			}
		}

		// Everything below requires a valid token.
		protected := apiV1.Group("/")
		protected.Use(middleware.Authenticate())
		{
			protected.GET("/auth/me", userHandler.GetProfile)

			// Sites are readable by everyone who can log in.
			protected.GET("/sites", siteHandler.GetAllSites)
			protected.GET("/sites/:id", siteHandler.GetSiteByID)

			// Projects and subcontractors follow the same read model.
			protected.GET("/projects", projectHandler.GetProjects)
			protected.GET("/projects/:id", projectHandler.GetProjectByID)
			protected.GET("/projects/:id/materials", projectHandler.GetProjectMaterials)
			protected.GET("/subcontractors", subcontractorHandler.GetSubcontractors)
			protected.GET("/subcontractors/:id", subcontractorHandler.GetSubcontractorByID)

			// Catalog is readable by everyone; mutations are warehouse work.
			items := protected.Group("/items")
			{
				items.GET("/", itemHandler.GetItems)
				items.GET("/barcode/:code", itemHandler.GetItemByBarcode)
				items.GET("/:id", itemHandler.GetItemByID)
				items.GET("/:id/barcode.png", itemHandler.GetItemBarcodePNG)

				itemsWrite := items.Group("/")
				itemsWrite.Use(middleware.Authorize(models.RoleWarehouse, models.RoleAdmin))
				{
					itemsWrite.POST("/", itemHandler.CreateItem)
					itemsWrite.PUT("/:id", itemHandler.UpdateItem)
					itemsWrite.DELETE("/:id", itemHandler.DeleteItem)
				}
			}

			// Material requests.
			requests := protected.Group("/requests")
			{
				requests.POST("/", requestHandler.CreateRequest)
				requests.GET("/my", requestHandler.GetMyRequests)
				requests.GET("/:id", requestHandler.GetRequestByNumber)
				requests.GET("/:id/history", requestHandler.GetRequestHistory)
				requests.POST("/:id/cancel", requestHandler.CancelRequest)

				requestsStaff := requests.Group("/")
				requestsStaff.Use(middleware.Authorize(models.RoleWarehouse, models.RoleAdmin))
				{
					requestsStaff.GET("/", requestHandler.GetRequests)
					requestsStaff.PATCH("/:id/status", requestHandler.UpdateRequestStatus)
				}
			}

			// Notifications belong to the authenticated user.
			notifications := protected.Group("/notifications")
			{
				notifications.GET("/", notificationHandler.GetNotifications)
				notifications.GET("/unread-count", notificationHandler.GetUnreadCount)
				notifications.PATCH("/:id/read", notificationHandler.MarkRead)
				notifications.POST("/mark-all-read", notificationHandler.MarkAllRead)
				notifications.DELETE("/:id", notificationHandler.DeleteNotification)
			}

			// Image uploads for request documentation.
			uploads := protected.Group("/uploads")
			{
				uploads.POST("/image", uploadHandler.UploadImage)
				uploads.POST("/images", uploadHandler.UploadImages)
			}

			// Returns: workers create, warehouse decides.
			returns := protected.Group("/returns")
			{
				returns.POST("/", returnHandler.CreateReturn)
				returns.GET("/", returnHandler.GetReturns)
				returns.GET("/:id", returnHandler.GetReturnByNumber)

				returnsStaff := returns.Group("/")
				returnsStaff.Use(middleware.Authorize(models.RoleWarehouse, models.RoleAdmin))
				{
					returnsStaff.POST("/:id/approve", returnHandler.ApproveReturn)
					returnsStaff.POST("/:id/reject", returnHandler.RejectReturn)
					returnsStaff.POST("/:id/complete", returnHandler.CompleteReturn)
				}
			}

			// Warehouse internals.
			wms := protected.Group("/wms")
			wms.Use(middleware.Authorize(models.RoleWarehouse, models.RoleAdmin))
			{
				wms.POST("/locations", warehouseHandler.CreateLocation)
				wms.GET("/locations", warehouseHandler.GetLocations)
				wms.GET("/inventory", warehouseHandler.GetInventory)
				wms.GET("/inventory/low-stock", warehouseHandler.GetLowStockItems)
				wms.POST("/transactions", warehouseHandler.CreateTransaction)
				wms.GET("/transactions", warehouseHandler.GetTransactions)
				wms.POST("/inventory/bulk-init", warehouseHandler.BulkInitInventory)

				wms.POST("/transfers", transferHandler.CreateTransfer)
				wms.GET("/transfers", transferHandler.GetTransfers)
				wms.GET("/transfers/:id", transferHandler.GetTransferByNumber)
				wms.POST("/transfers/:id/approve", transferHandler.ApproveTransfer)
				wms.POST("/transfers/:id/reject", transferHandler.RejectTransfer)
				wms.POST("/transfers/:id/complete", transferHandler.CompleteTransfer)
			}

			// Dashboard numbers for warehouse and admin screens.
			statistics := protected.Group("/statistics")
			statistics.Use(middleware.Authorize(models.RoleWarehouse, models.RolePurchasing, models.RoleAdmin))
			{
				statistics.GET("/dashboard", statsHandler.GetDashboard)
				statistics.GET("/monthly", statsHandler.GetMonthly)
			}

			// Procurement.
			purchasing := protected.Group("/")
			purchasing.Use(middleware.Authorize(models.RolePurchasing, models.RoleAdmin))
			{
				suppliers := purchasing.Group("/suppliers")
				{
					suppliers.POST("/", supplierHandler.CreateSupplier)
					suppliers.GET("/", supplierHandler.GetSuppliers)
					suppliers.GET("/:id", supplierHandler.GetSupplierByID)
					suppliers.PUT("/:id", supplierHandler.UpdateSupplier)
					suppliers.POST("/:id/items", supplierHandler.CreateSupplierItem)
					suppliers.GET("/:id/items", supplierHandler.GetSupplierItems)
				}

				orders := purchasing.Group("/purchase-orders")
				{
					orders.POST("/", poHandler.CreatePurchaseOrder)
					orders.GET("/", poHandler.GetPurchaseOrders)
					orders.GET("/:id", poHandler.GetPurchaseOrderByNumber)
					orders.POST("/:id/order", poHandler.MarkOrdered)
					orders.POST("/:id/receive", poHandler.ReceivePurchaseOrder)
					orders.POST("/:id/cancel", poHandler.CancelPurchaseOrder)
				}
			}
		}
	}

	return router
}
