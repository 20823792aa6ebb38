package normalize

// Kind classifies how a field's source value is carried into the row.
type Kind string

const (
	// KindScalar copies the source value. A composite found where a scalar
	// was expected is rendered as canonical JSON text.
	KindScalar Kind = "scalar"

	// KindComposite carries a nested payload as canonical JSON text. An
	// absent or falsy source yields null.
	KindComposite Kind = "composite"

	// KindRunDate is the run's logical date, identical on every row.
	KindRunDate Kind = "run_date"
)

// Field describes one column of the canonical row.
type Field struct {
	// Name is the column header.
	Name string `json:"name"`

	// Path is the dotted source path inside the raw order. Numeric segments
	// select the first element of nested lists.
	Path string `json:"path,omitempty"`

	Kind Kind `json:"kind"`
}

// Source paths of the first element of each nested list. Only the first
// element is ever projected.
const (
	firstItem           = "items.0."
	firstLogistics      = "shippingData.logisticsInfo.0."
	firstDelivery       = firstLogistics + "deliveryIds.0."
	firstTransaction    = "paymentData.transactions.0."
	firstPayment        = firstTransaction + "payments.0."
	firstGiftCard       = firstTransaction + "giftCards.0."
	firstPriceTag       = firstItem + "priceTags.0."
	firstCategory       = firstItem + "additionalInfo.categories.0."
	firstTotal          = "totals.0."
	firstRateAndBenefit = "ratesAndBenefitsData.rateAndBenefits.0."
)

func scalar(name, path string) Field {
	return Field{Name: name, Path: path, Kind: KindScalar}
}

func composite(name, path string) Field {
	return Field{Name: name, Path: path, Kind: KindComposite}
}

// fieldTable is the canonical row layout. Order is significant: it is the
// header order of every rewritten sheet.
var fieldTable = []Field{
	{Name: "extractionDate", Kind: KindRunDate},
	scalar("orderId", "orderId"),
	scalar("sellerOrderId", "sellerOrderId"),
	scalar("origin", "origin"),
	scalar("affiliateId", "affiliateId"),
	scalar("salesChannel", "salesChannel"),
	scalar("merchantName", "merchantName"),
	scalar("status", "status"),
	scalar("statusDescription", "statusDescription"),
	scalar("value", "value"),
	scalar("creationDate", "creationDate"),
	scalar("lastChange", "lastChange"),
	scalar("orderGroup", "orderGroup"),
	scalar("clientId", "clientProfileData.userProfileId"),
	scalar("shippingData.addressCity", "shippingData.address.city"),
	scalar("shippingData.addressState", "shippingData.address.state"),
	scalar("shippingData.addressCountry", "shippingData.address.countryCode"),
	scalar("shippingData.logisticsInfo.itemIndex", firstLogistics+"itemIndex"),
	scalar("shippingData.logisticsInfo.selectedSla", firstLogistics+"selectedSla"),
	scalar("shippingData.logisticsInfo.lockTTL", firstLogistics+"lockTTL"),
	scalar("shippingData.logisticsInfo.price", firstLogistics+"price"),
	scalar("shippingData.logisticsInfo.listPrice", firstLogistics+"listPrice"),
	scalar("shippingData.logisticsInfo.sellingPrice", firstLogistics+"sellingPrice"),
	scalar("shippingData.logisticsInfo.deliveryCompany", firstLogistics+"deliveryCompany"),
	scalar("shippingData.logisticsInfo.shippingEstimate", firstLogistics+"shippingEstimate"),
	scalar("shippingData.logisticsInfo.deliveryChannel", firstLogistics+"deliveryChannel"),
	scalar("shippingData.logisticsInfo.deliveryIds.courierId", firstDelivery+"courierId"),
	scalar("shippingData.logisticsInfo.deliveryIds.courierName", firstDelivery+"courierName"),
	scalar("shippingData.logisticsInfo.deliveryIds.dockId", firstDelivery+"dockId"),
	scalar("shippingData.logisticsInfo.deliveryIds.quantity", firstDelivery+"quantity"),
	scalar("shippingData.logisticsInfo.deliveryIds.warehouseId", firstDelivery+"warehouseId"),
	scalar("shippingData.logisticsInfo.deliveryIds.accountCarrierName", firstDelivery+"accountCarrierName"),
	scalar("paymentData.giftCards.value", firstGiftCard+"value"),
	scalar("paymentData.giftCards.balance", firstGiftCard+"balance"),
	scalar("paymentData.giftCards.provider", firstGiftCard+"provider"),
	scalar("paymentData.transactions.isActive", firstTransaction+"isActive"),
	scalar("paymentData.transactions.merchantName", firstTransaction+"merchantName"),
	scalar("paymentData.transactions.payments.paymentSystem", firstPayment+"paymentSystem"),
	scalar("paymentData.transactions.payments.paymentSystemName", firstPayment+"paymentSystemName"),
	scalar("paymentData.transactions.payments.value", firstPayment+"value"),
	scalar("paymentData.transactions.payments.installments", firstPayment+"installments"),
	scalar("paymentData.transactions.payments.referenceValue", firstPayment+"referenceValue"),
	scalar("paymentData.transactions.payments.group", firstPayment+"group"),
	scalar("authorizedDate", "authorizedDate"),
	scalar("invoicedDate", "invoicedDate"),
	scalar("cancelReason", "cancellationData.reason"),
	composite("subscriptionData", "subscriptionData"),
	composite("taxData", "taxData"),
	scalar("checkedInPickupPointId", "checkedInPickupPointId"),
	composite("cancellationData", "cancellationData"),
	scalar("totals.id", firstTotal+"id"),
	scalar("totals.name", firstTotal+"name"),
	scalar("totals.value", firstTotal+"value"),
	scalar("items.productId", firstItem+"productId"),
	scalar("items.quantity", firstItem+"quantity"),
	scalar("items.seller", firstItem+"seller"),
	scalar("items.name", firstItem+"name"),
	scalar("items.price", firstItem+"price"),
	scalar("items.listPrice", firstItem+"listPrice"),
	scalar("items.manualPrice", firstItem+"manualPrice"),
	scalar("items.priceTags.name", firstPriceTag+"name"),
	scalar("items.priceTags.value", firstPriceTag+"value"),
	scalar("items.priceTags.isPercentual", firstPriceTag+"isPercentual"),
	scalar("items.priceTags.rawValue", firstPriceTag+"rawValue"),
	scalar("items.priceTags.rate", firstPriceTag+"rate"),
	scalar("items.imageUrl", firstItem+"imageUrl"),
	scalar("items.detailUrl", firstItem+"detailUrl"),
	scalar("items.sellerSku", firstItem+"sellerSku"),
	scalar("items.priceValidUntil", firstItem+"priceValidUntil"),
	scalar("items.commission", firstItem+"commission"),
	scalar("items.tax", firstItem+"tax"),
	scalar("items.preSaleDate", firstItem+"preSaleDate"),
	scalar("items.additionalInfo.brandName", firstItem+"additionalInfo.brandName"),
	scalar("items.additionalInfo.brandId", firstItem+"additionalInfo.brandId"),
	scalar("items.additionalInfo.categoriesIds", firstItem+"additionalInfo.categoriesIds"),
	scalar("items.additionalInfo.categories.id", firstCategory+"id"),
	scalar("items.additionalInfo.categories.name", firstCategory+"name"),
	scalar("items.measurementUnit", firstItem+"measurementUnit"),
	scalar("items.unitMultiplier", firstItem+"unitMultiplier"),
	scalar("items.sellingPrice", firstItem+"sellingPrice"),
	scalar("items.isGift", firstItem+"isGift"),
	scalar("items.shippingPrice", firstItem+"shippingPrice"),
	scalar("items.rewardValue", firstItem+"rewardValue"),
	scalar("items.freightCommission", firstItem+"freightCommission"),
	scalar("items.taxCode", firstItem+"taxCode"),
	scalar("items.costPrice", firstItem+"costPrice"),
	scalar("ratesAndBenefitsData.description", firstRateAndBenefit+"description"),
	scalar("ratesAndBenefitsData.featured", firstRateAndBenefit+"featured"),
	scalar("ratesAndBenefitsData.id", firstRateAndBenefit+"id"),
	scalar("ratesAndBenefitsData.name", firstRateAndBenefit+"name"),
	scalar("ratesAndBenefitsData.couponCode", firstRateAndBenefit+"couponCode"),
	scalar("ratesAndBenefitsData.additionalInfo", firstRateAndBenefit+"additionalInfo"),
	scalar("marketplaceServicesEndpoint", "marketplaceServicesEndpoint"),
	scalar("utmSource", "marketingData.utmSource"),
	scalar("utmCampaign", "marketingData.utmCampaign"),
	scalar("utmMedium", "marketingData.utmMedium"),
}
