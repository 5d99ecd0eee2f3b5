package domain

import "github.com/avc/logistics-backoffice/internal/docstore"

// Коллекции документов
const (
	CollectionUsers           docstore.Collection = "users"
	CollectionOrders          docstore.Collection = "orders"
	CollectionTempOrders      docstore.Collection = "temp_orders"
	CollectionTransactions    docstore.Collection = "transactions"
	CollectionRepresentatives docstore.Collection = "representatives"
	CollectionCreditors       docstore.Collection = "creditors"
	CollectionExternalDebts   docstore.Collection = "external_debts"
	CollectionDeposits        docstore.Collection = "deposits"
	CollectionExpenses        docstore.Collection = "expenses"
	CollectionConversations   docstore.Collection = "conversations"
	CollectionMessages        docstore.Collection = "messages"
	CollectionNotifications   docstore.Collection = "notifications"
	CollectionShippingLabels  docstore.Collection = "manual_shipping_labels"
	CollectionInstantSales    docstore.Collection = "instant_sales"
	CollectionSettings        docstore.Collection = "settings"
)

// SettingsID ключ единственного документа настроек
const SettingsID = "global"

// AllCollections все коллекции приложения, из них строится реестр таблиц
var AllCollections = []docstore.Collection{
	CollectionUsers,
	CollectionOrders,
	CollectionTempOrders,
	CollectionTransactions,
	CollectionRepresentatives,
	CollectionCreditors,
	CollectionExternalDebts,
	CollectionDeposits,
	CollectionExpenses,
	CollectionConversations,
	CollectionMessages,
	CollectionNotifications,
	CollectionShippingLabels,
	CollectionInstantSales,
	CollectionSettings,
}
