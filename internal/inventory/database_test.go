package inventory

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/expiry-tracker/internal/expiry"
)

var _ = Describe("BoltDB", func() {
	var (
		dbPath string
		db     *BoltDB
	)

	BeforeEach(func() {
		dbPath = filepath.Join(GinkgoT().TempDir(), "test.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Describe("units", func() {
		var unit *Unit

		BeforeEach(func() {
			unit = &Unit{
				ID:             "unit-1",
				ProductName:    "Aspirina",
				ProductID:      "aspirina",
				ProductCode:    "AB123456",
				ExpirationDate: expiry.Date{Year: 2026, Month: time.April, Day: 30},
				Status:         expiry.StatusValid,
				CreatedAt:      time.Date(2025, time.January, 15, 10, 0, 0, 0, time.UTC),
			}
			Expect(db.SaveUnit(unit)).To(Succeed())
		})

		It("round-trips a unit", func() {
			got, err := db.GetUnit("unit-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ProductName).To(Equal("Aspirina"))
			Expect(got.ProductCode).To(Equal("AB123456"))
			Expect(got.ExpirationDate).To(Equal(unit.ExpirationDate))
			Expect(got.CreatedAt).To(BeTemporally("==", unit.CreatedAt))
		})

		It("lists units", func() {
			Expect(db.SaveUnit(&Unit{ID: "unit-2", ProductName: "Otro"})).To(Succeed())
			units, err := db.ListUnits()
			Expect(err).NotTo(HaveOccurred())
			Expect(units).To(HaveLen(2))
		})

		It("returns ErrNotFound for unknown IDs", func() {
			_, err := db.GetUnit("missing")
			Expect(err).To(MatchError(ErrNotFound))
		})

		It("deletes units", func() {
			Expect(db.DeleteUnit("unit-1")).To(Succeed())
			_, err := db.GetUnit("unit-1")
			Expect(err).To(MatchError(ErrNotFound))
		})

		It("persists across reopen", func() {
			Expect(db.Close()).To(Succeed())
			var err error
			db, err = NewBoltDB(dbPath)
			Expect(err).NotTo(HaveOccurred())

			got, err := db.GetUnit("unit-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ExpirationDate.String()).To(Equal("2026-04-30"))
		})
	})

	Describe("products", func() {
		It("upserts by product ID", func() {
			Expect(db.SaveProduct(&ProductSummary{ProductID: "aspirina", ProductName: "Aspirina", TotalQuantity: 2})).To(Succeed())
			Expect(db.SaveProduct(&ProductSummary{ProductID: "aspirina", ProductName: "Aspirina", TotalQuantity: 5})).To(Succeed())

			products, err := db.ListProducts()
			Expect(err).NotTo(HaveOccurred())
			Expect(products).To(HaveLen(1))
			Expect(products[0].TotalQuantity).To(Equal(5))
		})

		It("lists nothing when empty", func() {
			products, err := db.ListProducts()
			Expect(err).NotTo(HaveOccurred())
			Expect(products).To(BeEmpty())
		})
	})

	Describe("settings", func() {
		It("returns ErrNotFound before anything is saved", func() {
			_, err := db.GetSettings()
			Expect(err).To(MatchError(ErrNotFound))
		})

		It("round-trips settings", func() {
			Expect(db.SaveSettings(&Settings{ExpirationAlertMonths: 6})).To(Succeed())
			settings, err := db.GetSettings()
			Expect(err).NotTo(HaveOccurred())
			Expect(settings.ExpirationAlertMonths).To(Equal(6))
		})
	})
})
