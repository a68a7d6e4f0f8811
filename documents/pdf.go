package documents

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/yeremiapane/honda-dealer/models"
	"github.com/yeremiapane/honda-dealer/services"
	"github.com/yeremiapane/honda-dealer/utils"
)

const dealerName = "Honda Motor Dealer"

func newDocument(title string) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetAuthor(dealerName, true)
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, dealerName, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.Ln(4)
	return pdf
}

func row(pdf *fpdf.Fpdf, label, value string) {
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(55, 7, label, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 7, value, "", 1, "L", false, 0, "")
}

// WriteSchedule renders the installment plan of a credit order.
func WriteSchedule(w io.Writer, order *models.Order, schedule *services.CreditSchedule) error {
	pdf := newDocument("Jadwal Cicilan " + order.OrderCode)

	row(pdf, "Nama", order.CustomerName)
	row(pdf, "Motor", order.MotorcycleName)
	row(pdf, "Harga", utils.FormatRupiah(order.TotalPrice))
	row(pdf, "Uang Muka", utils.FormatRupiah(schedule.Credit.DownPaymentAmount))
	row(pdf, "Pokok Pinjaman", utils.FormatRupiah(schedule.Credit.LoanAmount))
	row(pdf, "Tenor", fmt.Sprintf("%d bulan", schedule.LoanTerm))
	row(pdf, "Bunga", fmt.Sprintf("%.1f%% per tahun", services.AnnualInterestRate))
	row(pdf, "Cicilan per Bulan", utils.FormatRupiah(schedule.Credit.MonthlyInstallment))
	row(pdf, "Total Pembayaran", utils.FormatRupiah(schedule.Credit.TotalPayment))
	pdf.Ln(4)

	headers := []string{"Ke", "Jatuh Tempo", "Angsuran", "Pokok", "Bunga", "Sisa Pokok"}
	widths := []float64{12, 33, 34, 34, 33, 34}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, inst := range schedule.Installments {
		cells := []string{
			fmt.Sprintf("%d", inst.Number),
			inst.DueDate.Format("02 Jan 2006"),
			utils.FormatRupiah(inst.Amount),
			utils.FormatRupiah(inst.Principal),
			utils.FormatRupiah(inst.Interest),
			utils.FormatRupiah(inst.Balance),
		}
		for i, c := range cells {
			align := "R"
			if i < 2 {
				align = "C"
			}
			pdf.CellFormat(widths[i], 6, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}

// WriteInstruction renders a payment instruction for the buyer to keep.
func WriteInstruction(w io.Writer, inst *models.PaymentInstruction, now time.Time) error {
	pdf := newDocument("Instruksi Pembayaran " + inst.PaymentCode)

	if inst.Order != nil {
		row(pdf, "Nomor Order", inst.Order.OrderCode)
		row(pdf, "Nama", inst.Order.CustomerName)
		row(pdf, "Motor", inst.Order.MotorcycleName)
	}
	row(pdf, "Kode Pembayaran", inst.PaymentCode)
	row(pdf, "Jumlah", utils.FormatRupiah(inst.Amount))
	row(pdf, "Berlaku Sampai", inst.ExpiresAt.Format("02 Jan 2006 15:04 MST"))
	row(pdf, "Status", string(inst.Status))
	pdf.Ln(4)

	details, err := inst.MethodDetails()
	if err != nil {
		return err
	}
	switch d := details.(type) {
	case models.BankTransferDetails:
		row(pdf, "Metode", "Transfer Bank")
		row(pdf, "Bank", d.BankName)
		row(pdf, "Nomor Rekening", d.AccountNumber)
		row(pdf, "Atas Nama", d.AccountHolder)
	case models.EWalletDetails:
		row(pdf, "Metode", "E-Wallet")
		row(pdf, "E-Wallet", d.WalletType)
		row(pdf, "Nomor", d.WalletNumber)
		row(pdf, "Atas Nama", d.WalletName)
	case models.QRCodeDetails:
		row(pdf, "Metode", "QR Code")
		row(pdf, "Konten QR", d.QRContent)
	case models.CashDetails:
		row(pdf, "Metode", "Tunai")
		row(pdf, "Alamat Pembayaran", d.PickupAddress)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.MultiCell(0, 5, "Unggah bukti pembayaran sebelum batas waktu. Dicetak "+now.Format("02 Jan 2006 15:04"), "", "L", false)

	return pdf.Output(w)
}
