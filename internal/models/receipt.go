package models

// PurchaseDetails описывает покупку для письма-чека.
type PurchaseDetails struct {
	Amount        int64  `json:"amount"` // В минимальных единицах валюты
	TransactionID string `json:"transactionId"`
	PurchaseDate  string `json:"purchaseDate"` // ISO-8601
	ProductName   string `json:"productName"`
	Description   string `json:"description"`
}

// ReceiptRequest - сообщение об отправке чека на почту покупателя.
type ReceiptRequest struct {
	MessageID       string          `json:"message_id"`
	Email           string          `json:"email"`
	PurchaseDetails PurchaseDetails `json:"purchase_details"`
}
