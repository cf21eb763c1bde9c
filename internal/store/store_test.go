package store_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nftterminal/nftterm/internal/store"
)

var _ = Describe("Store backends", func() {
	backends := []string{
		store.BackendMemory,
		store.BackendJSON,
		store.BackendLevelDB,
		store.BackendPebble,
	}

	for _, backend := range backends {
		backend := backend

		Context(backend, func() {
			var (
				dir string
				s   store.Store
			)

			BeforeEach(func() {
				dir = GinkgoT().TempDir()
				var err error
				s, err = store.Open(backend, dir)
				Expect(err).NotTo(HaveOccurred())
				DeferCleanup(func() {
					Expect(s.Close()).To(Succeed())
				})
			})

			It("returns ErrNotFound for a missing key", func() {
				_, err := s.Get("missing")
				Expect(err).To(MatchError(store.ErrNotFound))
			})

			It("round-trips JSON values", func() {
				value := []byte(`[{"address":"0xabc","name":"Punks"}]`)
				Expect(s.Set("nft_terminal_deployed_contracts", value)).To(Succeed())

				got, err := s.Get("nft_terminal_deployed_contracts")
				Expect(err).NotTo(HaveOccurred())
				Expect(got).To(MatchJSON(value))
			})

			It("round-trips opaque values", func() {
				Expect(s.Set("blob", []byte("not json {"))).To(Succeed())
				got, err := s.Get("blob")
				Expect(err).NotTo(HaveOccurred())
				Expect(string(got)).To(Equal("not json {"))
			})

			It("overwrites existing keys", func() {
				Expect(s.Set("k", []byte("1"))).To(Succeed())
				Expect(s.Set("k", []byte("2"))).To(Succeed())
				got, err := s.Get("k")
				Expect(err).NotTo(HaveOccurred())
				Expect(string(got)).To(Equal("2"))
			})

			It("keeps keys independent", func() {
				Expect(s.Set("a", []byte(`"x"`))).To(Succeed())
				Expect(s.Set("b", []byte("y"))).To(Succeed())

				a, err := s.Get("a")
				Expect(err).NotTo(HaveOccurred())
				Expect(string(a)).To(Equal(`"x"`))
				b, err := s.Get("b")
				Expect(err).NotTo(HaveOccurred())
				Expect(string(b)).To(Equal("y"))
			})
		})
	}

	Describe("persistence", func() {
		for _, backend := range []string{store.BackendJSON, store.BackendLevelDB, store.BackendPebble} {
			backend := backend

			It("survives reopening with "+backend, func() {
				dir := GinkgoT().TempDir()
				s, err := store.Open(backend, dir)
				Expect(err).NotTo(HaveOccurred())
				Expect(s.Set("k", []byte(`{"n":1}`))).To(Succeed())
				Expect(s.Close()).To(Succeed())

				s, err = store.Open(backend, dir)
				Expect(err).NotTo(HaveOccurred())
				defer s.Close()
				got, err := s.Get("k")
				Expect(err).NotTo(HaveOccurred())
				Expect(got).To(MatchJSON(`{"n":1}`))
			})
		}
	})

	Describe("JSON file", func() {
		It("writes a readable, owner-only file", func() {
			dir := GinkgoT().TempDir()
			s := store.NewJSONFile(filepath.Join(dir, "sub", "store.json"))
			Expect(s.Set("k", []byte(`[1,2]`))).To(Succeed())

			info, err := os.Stat(s.Path())
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o600)))

			data, err := os.ReadFile(s.Path())
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(MatchJSON(`{"k":[1,2]}`))
		})

		It("reports a corrupt file", func() {
			path := filepath.Join(GinkgoT().TempDir(), "store.json")
			Expect(os.WriteFile(path, []byte("{oops"), 0o600)).To(Succeed())
			_, err := store.NewJSONFile(path).Get("k")
			Expect(err).To(MatchError(ContainSubstring("parsing")))
		})
	})

	It("rejects unknown backends", func() {
		_, err := store.Open("redis", GinkgoT().TempDir())
		Expect(err).To(MatchError(ContainSubstring("unknown store backend")))
	})
})
