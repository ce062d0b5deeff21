package resources

import "sort"

// Item is a named group of threads, referenced by their thread number (the
// `#123` a course shows) rather than their id.
type Item struct {
	Name    string  `json:"name"`
	Numbers []int64 `json:"numbers"`
}

type Category struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// Catalog is the ordered list of categories to fetch.
type Catalog []Category

const HomeworkCategory = "homework"

// Numbers returns every thread number of the catalog once, ascending.
func (c Catalog) Numbers() []int64 {
	seen := map[int64]struct{}{}
	var out []int64
	for _, category := range c {
		for _, item := range category.Items {
			for _, n := range item.Numbers {
				if _, ok := seen[n]; ok {
					continue
				}
				seen[n] = struct{}{}
				out = append(out, n)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DefaultCatalog is the resource table of the course summary post.
func DefaultCatalog() Catalog {
	return Catalog{
		{
			Name: "lectures",
			Items: []Item{
				{Name: "Lec_00", Numbers: []int64{6}},
				{Name: "Lec_01", Numbers: []int64{28}},
				{Name: "Lec_02-03_SGD_Momentum_Adam", Numbers: []int64{58}},
				{Name: "Lec_04-05_Initialization_Shampoo", Numbers: []int64{79}},
				{Name: "Lec_06-07_Muon_muP", Numbers: []int64{90}},
				{Name: "Lec_08-09_CNN_basics", Numbers: []int64{109}},
				{Name: "Lec_10_Norm_Dropout_Residual", Numbers: []int64{108}},
				{Name: "Lec_11_Resnets_pooling", Numbers: []int64{132}},
				{Name: "Lec_12_GNN_intro", Numbers: []int64{136}},
				{Name: "Lec_13_GNN_DiffPool", Numbers: []int64{157}},
				{Name: "Lec_14_RNNs_self_supervision", Numbers: []int64{161}},
				{Name: "Lec_15_self_supervision", Numbers: []int64{174}},
				{Name: "Lec_15-18_SSMs_Mamba_Attention", Numbers: []int64{237}},
				{Name: "Lec_21_ICL_finetuning", Numbers: []int64{297}},
				{Name: "Lec_23_Meta_Learning", Numbers: []int64{298}},
				{Name: "Lec_24_VAE_test_time", Numbers: []int64{307}},
				{Name: "Lec_25_RLVR", Numbers: []int64{328}},
				{Name: "Lec_26_RLHF_DPO_diffusion", Numbers: []int64{445}},
				{Name: "Lec_27_DDPM_DDIM", Numbers: []int64{498}},
			},
		},
		{
			Name: HomeworkCategory,
			Items: []Item{
				{Name: "HW00", Numbers: []int64{11, 12, 13, 14, 15, 16, 17, 53}},
				{Name: "HW01", Numbers: []int64{40, 41, 42, 43, 44, 45, 46, 74}},
				{Name: "HW02", Numbers: []int64{68, 69, 70, 71, 72, 73, 88}},
				{Name: "HW03", Numbers: []int64{83, 84, 85, 86, 87, 104}},
				{Name: "HW04", Numbers: []int64{94, 95, 96, 97, 98, 99, 100, 127}},
				{Name: "HW05", Numbers: []int64{110, 111, 112, 113, 114, 115, 159}},
				{Name: "HW06", Numbers: []int64{142, 143, 144, 145, 146, 147, 172}},
				{Name: "HW07", Numbers: []int64{171, 170, 169, 168, 167, 197}},
				{Name: "HW08", Numbers: []int64{178, 179, 180, 181, 274}},
				{Name: "HW09", Numbers: []int64{210, 211, 212, 213, 214, 215, 271}},
				{Name: "HW10", Numbers: []int64{265, 266, 267, 268, 269, 350}},
				{Name: "HW11", Numbers: []int64{287, 288, 289, 290, 291, 292, 293, 360}},
				{Name: "HW12", Numbers: []int64{318, 319, 320, 321, 322, 924}},
				{Name: "HW13", Numbers: []int64{448, 449, 450, 795}},
			},
		},
		{
			Name: "old_exam",
			Items: []Item{
				{Name: "HW05_Old_Exam", Numbers: []int64{121, 122}},
				{Name: "HW12_Old_Exam", Numbers: []int64{323}},
			},
		},
		{
			Name: "discussions",
			Items: []Item{
				{Name: "Discussion", Numbers: []int64{30, 34, 67, 93, 91, 123, 140, 158, 176, 252, 253, 280, 303, 437}},
			},
		},
		{
			Name: "other",
			Items: []Item{
				{Name: "Participation_Details", Numbers: []int64{75}},
				{Name: "Form", Numbers: []int64{403}},
				{Name: "Project_Details", Numbers: []int64{150}},
				{Name: "Review_Session", Numbers: []int64{735}},
			},
		},
	}
}
