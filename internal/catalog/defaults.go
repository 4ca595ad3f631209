package catalog

// DefaultTransformations is the canonical studio catalog, in canonical display
// order. Keys are stable identifiers persisted in user ordering preferences.
func DefaultTransformations() []Transformation {
	return []Transformation{
		{
			Key:          "custom-edit",
			TitleKey:     "transform.custom_edit",
			Prompt:       CustomPrompt,
			Shape:        ShapeSingle,
			SupportsMask: true,
		},
		{
			Key:      "anime-style",
			TitleKey: "transform.anime_style",
			Prompt: "Redraw this photo as a vibrant anime illustration. Keep the subject's " +
				"pose, facial features, and outfit recognizable while applying clean line " +
				"work and cel shading.",
			Shape:        ShapeSingle,
			SupportsMask: true,
		},
		{
			Key:      "figurine",
			TitleKey: "transform.figurine",
			Prompt: "Turn the subject of this photo into a collectible 1/7 scale PVC figurine " +
				"displayed on a computer desk, with its retail box beside it showing the " +
				"original artwork.",
			Shape: ShapeSingle,
		},
		{
			Key:      "restore-photo",
			TitleKey: "transform.restore_photo",
			Prompt: "Restore this old photograph: repair scratches and tears, rebalance the " +
				"faded colors, and sharpen the details while keeping every face true to " +
				"the original.",
			Shape: ShapeSingle,
		},
		{
			Key:      "outfit-swap",
			TitleKey: "transform.outfit_swap",
			Prompt: "Dress the person in the first image in the outfit shown in the second " +
				"image. If no second image is provided, restyle the existing outfit into " +
				"an elegant evening look. Keep the pose and background unchanged.",
			Shape: ShapeDualOptional,
		},
		{
			Key:      "pose-copy",
			TitleKey: "transform.pose_copy",
			Prompt: "Repose the person in the first image to match the pose in the second " +
				"image exactly, preserving their face, outfit, and the original background.",
			Shape: ShapeDualRequired,
		},
		{
			Key:      "lookbook",
			TitleKey: "transform.lookbook",
			Prompt: "Create a professional fashion lookbook photo of the person in these " +
				"images. Scene description: ",
			Shape:     ShapeLookbook,
			MaxImages: 5,
		},
		{
			Key:      "group-photo",
			TitleKey: "transform.group_photo",
			Prompt: "Combine the people from these photos into one natural group photo taken " +
				"in a sunlit park. Match lighting and scale so nobody looks pasted in.",
			Shape:     ShapeGallery,
			MaxImages: 4,
		},
		{
			Key:      "payment-qr-chibi",
			TitleKey: "transform.payment_qr_chibi",
			Prompt: "Draw the person in the first image as a cheerful chibi character holding " +
				"a sign with a payment QR code generated for bank {{bankName}}, account " +
				"number {{accountNumber}}, account holder {{accountName}}. Use the QR code " +
				"from the second image as the exact code on the sign.",
			Shape:  ShapeTemplateFields,
			Fields: []string{"bankName", "accountNumber", "accountName"},
		},
		{
			Key:      "line-art-composite",
			TitleKey: "transform.line_art_composite",
			Prompt: "Convert this photo into clean black-and-white line art, keeping the " +
				"composition and proportions exact.",
			StepTwoPrompt: "Color the line art in the first image using the person in the " +
				"second image as the subject reference, producing one polished final " +
				"illustration.",
			Shape: ShapeTwoStep,
		},
		{
			Key:      "trend-dance",
			TitleKey: "transform.trend_dance",
			Prompt: "Place the person from these photos into a trendy dance studio scene " +
				"with dramatic neon lighting, full body visible, facing the camera.",
			VideoPrompt: "Animate this image into a short video of the person doing a " +
				"popular dance, smooth motion, camera fixed.",
			Shape:     ShapeBatchVideo,
			MaxImages: 3,
		},
		{
			Key:      "text-to-image",
			TitleKey: "transform.text_to_image",
			Prompt:   CustomPrompt,
			Shape:    ShapeFreeText,
		},
	}
}
