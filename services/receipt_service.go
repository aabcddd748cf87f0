package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"time"

	config "github.com/Hieupu/ATPS-BE-sub002/configs"
	"github.com/Hieupu/ATPS-BE-sub002/models"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReceiptService renders a payment receipt PDF and uploads it to Cloudinary,
// recording the URL on the payment row. Entirely best-effort: reconciliation
// never waits on it and never sees its errors.
type ReceiptService struct {
	db *gorm.DB
}

func NewReceiptService(db *gorm.DB) *ReceiptService {
	return &ReceiptService{db: db}
}

// GenerateForOrder builds and stores the receipt for a settled order.
func (s *ReceiptService) GenerateForOrder(orderCode int64, learnerName, className string, amount float64) {
	htmlData, err := renderReceiptHTML(orderCode, learnerName, className, amount)
	if err != nil {
		log.Printf("🔥 Failed to render receipt HTML for order %d: %v", orderCode, err)
		return
	}

	pdfBytes, err := printPDF(htmlData)
	if err != nil {
		log.Printf("🔥 Failed to generate receipt PDF for order %d: %v", orderCode, err)
		return
	}

	uploadURL, err := uploadReceipt(pdfBytes, orderCode)
	if err != nil {
		log.Printf("🔥 Failed to upload receipt for order %d: %v", orderCode, err)
		return
	}

	err = s.db.Model(&models.Payment{}).
		Where("enrollment_id = (?)", s.db.Model(&models.Enrollment{}).Select("id").Where("order_code = ?", orderCode)).
		Update("receipt_url", uploadURL).Error
	if err != nil {
		log.Printf("🔥 Failed to record receipt URL for order %d: %v", orderCode, err)
		return
	}
	log.Printf("✅ Receipt generated for order %d", orderCode)
}

func renderReceiptHTML(orderCode int64, learnerName, className string, amount float64) (string, error) {
	tmpl, err := template.ParseFiles("templates/receipt.html")
	if err != nil {
		return "", err
	}

	data := struct {
		OrderCode   int64
		LearnerName string
		ClassName   string
		Amount      string
		PaymentDate string
	}{
		OrderCode:   orderCode,
		LearnerName: learnerName,
		ClassName:   className,
		Amount:      fmt.Sprintf("%.2f", amount),
		PaymentDate: time.Now().Format("January 2, 2006"),
	}

	var rendered bytes.Buffer
	if err := tmpl.Execute(&rendered, data); err != nil {
		return "", err
	}
	return rendered.String(), nil
}

func printPDF(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func uploadReceipt(fileBytes []byte, orderCode int64) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("receipts/%d_%s", orderCode, uuid.New().String()),
		Folder:       "atps_receipts",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}
	return uploadResult.SecureURL, nil
}
